package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
)

const teacherCols = `id, username, password, first_name, last_name, email, role, department,
advisory_grade, advisory_section, advisory_track, advisory_start_time, has_changed_credentials`

func scanTeacher(row interface{ Scan(...any) error }) (*models.Teacher, error) {
	var t models.Teacher
	var email, department, advGrade, advSection, advTrack, advStart sql.NullString
	err := row.Scan(&t.ID, &t.Username, &t.Password, &t.FirstName, &t.LastName,
		&email, &t.Role, &department, &advGrade, &advSection, &advTrack, &advStart,
		&t.HasChangedCredentials)
	if err != nil {
		return nil, err
	}
	t.Email = strPtr(email)
	t.Department = strPtr(department)
	t.AdvisoryGrade = strPtr(advGrade)
	t.AdvisorySection = strPtr(advSection)
	t.AdvisoryTrack = strPtr(advTrack)
	t.AdvisoryStartTime = strPtr(advStart)
	return &t, nil
}

// UpsertTeacher writes with replace semantics on any unique conflict, not
// just the primary key: a row arriving with an already-taken username evicts
// the previous holder instead of failing. Sync pulls rely on this; a
// username collision between two devices must never abort the pass.
func UpsertTeacher(ctx context.Context, database *sql.DB, t models.Teacher) error {
	_, err := database.ExecContext(ctx, `
INSERT OR REPLACE INTO teachers (`+teacherCols+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Username, t.Password, t.FirstName, t.LastName,
		nullStr(t.Email), string(t.Role), nullStr(t.Department),
		nullStr(t.AdvisoryGrade), nullStr(t.AdvisorySection),
		nullStr(t.AdvisoryTrack), nullStr(t.AdvisoryStartTime),
		t.HasChangedCredentials)
	if err != nil {
		return fmt.Errorf("upsert teacher %s: %w", t.ID, err)
	}
	return nil
}

func GetTeacherByID(ctx context.Context, database *sql.DB, id string) (*models.Teacher, error) {
	row := database.QueryRowContext(ctx, `SELECT `+teacherCols+` FROM teachers WHERE id = ?`, id)
	t, err := scanTeacher(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get teacher %s: %w", id, err)
	}
	return t, nil
}

func GetTeacherByUsername(ctx context.Context, database *sql.DB, username string) (*models.Teacher, error) {
	row := database.QueryRowContext(ctx, `SELECT `+teacherCols+` FROM teachers WHERE username = ?`, username)
	t, err := scanTeacher(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get teacher by username: %w", err)
	}
	return t, nil
}

func ListTeachers(ctx context.Context, database *sql.DB) ([]models.Teacher, error) {
	rows, err := database.QueryContext(ctx, `SELECT `+teacherCols+` FROM teachers ORDER BY last_name`)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	defer rows.Close()

	var out []models.Teacher
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, fmt.Errorf("scan teacher: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// GetAdviserForClass returns the teacher currently advising (grade, section),
// nil when the class has no adviser.
func GetAdviserForClass(ctx context.Context, database *sql.DB, grade, section string) (*models.Teacher, error) {
	row := database.QueryRowContext(ctx, `
SELECT `+teacherCols+` FROM teachers
WHERE advisory_grade = ? AND advisory_section = ?
LIMIT 1`, grade, section)
	t, err := scanTeacher(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get adviser for %s-%s: %w", grade, section, err)
	}
	return t, nil
}

// UpdateAdvisoryDetails overwrites only the advisory columns and the role.
// Passing nils clears the assignment and demotes the teacher to subject.
func UpdateAdvisoryDetails(ctx context.Context, database *sql.DB, id string, grade, section, track, startTime *string) error {
	role := models.RoleSubject
	if grade != nil {
		role = models.RoleAdviser
	}
	_, err := database.ExecContext(ctx, `
UPDATE teachers SET advisory_grade = ?, advisory_section = ?, advisory_track = ?, advisory_start_time = ?, role = ?
WHERE id = ?`,
		nullStr(grade), nullStr(section), nullStr(track), nullStr(startTime), string(role), id)
	if err != nil {
		return fmt.Errorf("update advisory details %s: %w", id, err)
	}
	return nil
}

func UpdateTeacherCredentials(ctx context.Context, database *sql.DB, id, username, password string) error {
	_, err := database.ExecContext(ctx, `
UPDATE teachers SET username = ?, password = ?, has_changed_credentials = 1 WHERE id = ?`,
		username, password, id)
	if err != nil {
		return fmt.Errorf("update teacher %s credentials: %w", id, err)
	}
	return nil
}

func DeleteTeacher(ctx context.Context, database *sql.DB, id string) error {
	_, err := database.ExecContext(ctx, `DELETE FROM teachers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete teacher %s: %w", id, err)
	}
	return nil
}
