package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
)

const eventCols = `id, date, title, type, description, is_no_class, synced`

func scanEvent(row interface{ Scan(...any) error }) (*models.SchoolEvent, error) {
	var e models.SchoolEvent
	var description sql.NullString
	err := row.Scan(&e.ID, &e.Date, &e.Title, &e.Type, &description, &e.IsNoClass, &e.Synced)
	if err != nil {
		return nil, err
	}
	e.Description = strPtr(description)
	return &e, nil
}

func UpsertSchoolEvent(ctx context.Context, database *sql.DB, e models.SchoolEvent) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO school_events (`+eventCols+`)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    date=excluded.date, title=excluded.title, type=excluded.type,
    description=excluded.description, is_no_class=excluded.is_no_class,
    synced=excluded.synced`,
		e.ID, e.Date, e.Title, e.Type, nullStr(e.Description), e.IsNoClass, e.Synced)
	if err != nil {
		return fmt.Errorf("upsert school event %s: %w", e.ID, err)
	}
	return nil
}

func GetSchoolEvent(ctx context.Context, database *sql.DB, id string) (*models.SchoolEvent, error) {
	row := database.QueryRowContext(ctx, `SELECT `+eventCols+` FROM school_events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get school event %s: %w", id, err)
	}
	return e, nil
}

func ListSchoolEvents(ctx context.Context, database *sql.DB) ([]models.SchoolEvent, error) {
	rows, err := database.QueryContext(ctx, `SELECT `+eventCols+` FROM school_events ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("list school events: %w", err)
	}
	defer rows.Close()

	var out []models.SchoolEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan school event: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// EventsOnDay returns events whose day matches the given day-truncated
// timestamp.
func EventsOnDay(ctx context.Context, database *sql.DB, day int64) ([]models.SchoolEvent, error) {
	rows, err := database.QueryContext(ctx, `SELECT `+eventCols+` FROM school_events WHERE date = ?`, day)
	if err != nil {
		return nil, fmt.Errorf("events on day: %w", err)
	}
	defer rows.Close()

	var out []models.SchoolEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan school event: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func DeleteSchoolEvent(ctx context.Context, database *sql.DB, id string) error {
	_, err := database.ExecContext(ctx, `DELETE FROM school_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete school event %s: %w", id, err)
	}
	return nil
}
