package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
)

const attendanceCols = `id, student_id, timestamp, status, type, subject, academic_period, synced`

func scanAttendance(row interface{ Scan(...any) error }) (*models.AttendanceRecord, error) {
	var a models.AttendanceRecord
	var subject sql.NullString
	err := row.Scan(&a.ID, &a.StudentID, &a.Timestamp, &a.Status, &a.Type,
		&subject, &a.AcademicPeriod, &a.Synced)
	if err != nil {
		return nil, err
	}
	a.Subject = strPtr(subject)
	return &a, nil
}

// InsertAttendance appends one record. The unique (student_id, timestamp)
// index makes a duplicate insert a no-op instead of an error, which is what
// the pull side of the sync pass relies on.
func InsertAttendance(ctx context.Context, database *sql.DB, a models.AttendanceRecord) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO attendance (`+attendanceCols+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(student_id, timestamp) DO NOTHING`,
		a.ID, a.StudentID, a.Timestamp, a.Status, a.Type,
		nullStr(a.Subject), a.AcademicPeriod, a.Synced)
	if err != nil {
		return fmt.Errorf("insert attendance %s@%d: %w", a.StudentID, a.Timestamp, err)
	}
	return nil
}

// AttendanceExists checks the (studentID, timestamp) identity pair.
func AttendanceExists(ctx context.Context, database *sql.DB, studentID string, timestamp int64) (bool, error) {
	var n int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance WHERE student_id = ? AND timestamp = ?`,
		studentID, timestamp).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("attendance exists: %w", err)
	}
	return n > 0, nil
}

// HasAttendanceInRange reports whether the student has any record with
// from <= timestamp <= to.
func HasAttendanceInRange(ctx context.Context, database *sql.DB, studentID string, from, to int64) (bool, error) {
	var n int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance WHERE student_id = ? AND timestamp >= ? AND timestamp <= ?`,
		studentID, from, to).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("attendance in range: %w", err)
	}
	return n > 0, nil
}

func UnsyncedAttendance(ctx context.Context, database *sql.DB) ([]models.AttendanceRecord, error) {
	return queryAttendance(ctx, database, `SELECT `+attendanceCols+` FROM attendance WHERE synced = 0 ORDER BY timestamp`)
}

// MarkAttendanceSynced flips the synced flag for the given record ids.
func MarkAttendanceSynced(ctx context.Context, database *sql.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	_, err := database.ExecContext(ctx,
		`UPDATE attendance SET synced = 1 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("mark attendance synced: %w", err)
	}
	return nil
}

func queryAttendance(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.AttendanceRecord, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	var out []models.AttendanceRecord
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func ListAttendanceByStudent(ctx context.Context, database *sql.DB, studentID string) ([]models.AttendanceRecord, error) {
	return queryAttendance(ctx, database,
		`SELECT `+attendanceCols+` FROM attendance WHERE student_id = ? ORDER BY timestamp`, studentID)
}

// ListAttendanceInRange returns records with from <= timestamp <= to.
func ListAttendanceInRange(ctx context.Context, database *sql.DB, from, to int64) ([]models.AttendanceRecord, error) {
	return queryAttendance(ctx, database,
		`SELECT `+attendanceCols+` FROM attendance WHERE timestamp >= ? AND timestamp <= ? ORDER BY timestamp`, from, to)
}

// ListAttendanceBySubjectInRange filters on the subject name; an empty
// subject matches homeroom records.
func ListAttendanceBySubjectInRange(ctx context.Context, database *sql.DB, subject string, from, to int64) ([]models.AttendanceRecord, error) {
	if subject == "" {
		return queryAttendance(ctx, database, `
SELECT `+attendanceCols+` FROM attendance
WHERE subject IS NULL AND timestamp >= ? AND timestamp <= ? ORDER BY timestamp`, from, to)
	}
	return queryAttendance(ctx, database, `
SELECT `+attendanceCols+` FROM attendance
WHERE subject = ? AND timestamp >= ? AND timestamp <= ? ORDER BY timestamp`, subject, from, to)
}

func CountAttendance(ctx context.Context, database *sql.DB) (int, error) {
	var n int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return n, nil
}

// DeleteAllAttendance is the bulk local clear; it never touches remote.
func DeleteAllAttendance(ctx context.Context, database *sql.DB) error {
	if _, err := database.ExecContext(ctx, `DELETE FROM attendance`); err != nil {
		return fmt.Errorf("delete all attendance: %w", err)
	}
	return nil
}
