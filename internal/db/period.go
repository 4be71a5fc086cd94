package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
)

// UpsertSchoolPeriod overwrites the singleton calendar row.
func UpsertSchoolPeriod(ctx context.Context, database *sql.DB, p models.SchoolPeriod) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO school_period (id, school_year,
    q1_start, q1_end, q2_start, q2_end, q3_start, q3_end, q4_start, q4_end,
    shs_q1_start, shs_q1_end, shs_q2_start, shs_q2_end, shs_q3_start, shs_q3_end, shs_q4_start, shs_q4_end)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    school_year=excluded.school_year,
    q1_start=excluded.q1_start, q1_end=excluded.q1_end,
    q2_start=excluded.q2_start, q2_end=excluded.q2_end,
    q3_start=excluded.q3_start, q3_end=excluded.q3_end,
    q4_start=excluded.q4_start, q4_end=excluded.q4_end,
    shs_q1_start=excluded.shs_q1_start, shs_q1_end=excluded.shs_q1_end,
    shs_q2_start=excluded.shs_q2_start, shs_q2_end=excluded.shs_q2_end,
    shs_q3_start=excluded.shs_q3_start, shs_q3_end=excluded.shs_q3_end,
    shs_q4_start=excluded.shs_q4_start, shs_q4_end=excluded.shs_q4_end`,
		models.SchoolPeriodID, p.SchoolYear,
		p.Q1Start, p.Q1End, p.Q2Start, p.Q2End, p.Q3Start, p.Q3End, p.Q4Start, p.Q4End,
		p.ShsQ1Start, p.ShsQ1End, p.ShsQ2Start, p.ShsQ2End, p.ShsQ3Start, p.ShsQ3End, p.ShsQ4Start, p.ShsQ4End)
	if err != nil {
		return fmt.Errorf("upsert school period: %w", err)
	}
	return nil
}

// GetSchoolPeriod returns nil, nil when the calendar was never configured.
func GetSchoolPeriod(ctx context.Context, database *sql.DB) (*models.SchoolPeriod, error) {
	row := database.QueryRowContext(ctx, `
SELECT school_year,
    q1_start, q1_end, q2_start, q2_end, q3_start, q3_end, q4_start, q4_end,
    shs_q1_start, shs_q1_end, shs_q2_start, shs_q2_end, shs_q3_start, shs_q3_end, shs_q4_start, shs_q4_end
FROM school_period WHERE id = ?`, models.SchoolPeriodID)

	var p models.SchoolPeriod
	err := row.Scan(&p.SchoolYear,
		&p.Q1Start, &p.Q1End, &p.Q2Start, &p.Q2End, &p.Q3Start, &p.Q3End, &p.Q4Start, &p.Q4End,
		&p.ShsQ1Start, &p.ShsQ1End, &p.ShsQ2Start, &p.ShsQ2End, &p.ShsQ3Start, &p.ShsQ3End, &p.ShsQ4Start, &p.ShsQ4End)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get school period: %w", err)
	}
	return &p, nil
}
