package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
)

const studentCols = `id, first_name, last_name, grade, section, username, password, has_changed_credentials, is_archived`

func scanStudent(row interface{ Scan(...any) error }) (*models.Student, error) {
	var s models.Student
	var username, password sql.NullString
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Grade, &s.Section,
		&username, &password, &s.HasChangedCredentials, &s.IsArchived)
	if err != nil {
		return nil, err
	}
	s.Username = strPtr(username)
	s.Password = strPtr(password)
	return &s, nil
}

// UpsertStudent inserts or fully overwrites a student row. Write-through
// from remote and local inserts both land here, so last write wins.
func UpsertStudent(ctx context.Context, database *sql.DB, s models.Student) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO students (`+studentCols+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    first_name=excluded.first_name, last_name=excluded.last_name,
    grade=excluded.grade, section=excluded.section,
    username=excluded.username, password=excluded.password,
    has_changed_credentials=excluded.has_changed_credentials,
    is_archived=excluded.is_archived`,
		s.ID, s.FirstName, s.LastName, s.Grade, s.Section,
		nullStr(s.Username), nullStr(s.Password), s.HasChangedCredentials, s.IsArchived)
	if err != nil {
		return fmt.Errorf("upsert student %s: %w", s.ID, err)
	}
	return nil
}

// UpsertStudents writes a batch inside one transaction.
func UpsertStudents(ctx context.Context, database *sql.DB, students []models.Student) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO students (`+studentCols+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    first_name=excluded.first_name, last_name=excluded.last_name,
    grade=excluded.grade, section=excluded.section,
    username=excluded.username, password=excluded.password,
    has_changed_credentials=excluded.has_changed_credentials,
    is_archived=excluded.is_archived`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, s := range students {
		if _, err := stmt.ExecContext(ctx, s.ID, s.FirstName, s.LastName, s.Grade, s.Section,
			nullStr(s.Username), nullStr(s.Password), s.HasChangedCredentials, s.IsArchived); err != nil {
			return fmt.Errorf("upsert student %s: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

// GetStudentByID returns nil, nil when the row does not exist.
func GetStudentByID(ctx context.Context, database *sql.DB, id string) (*models.Student, error) {
	row := database.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE id = ?`, id)
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get student %s: %w", id, err)
	}
	return s, nil
}

func GetStudentByUsername(ctx context.Context, database *sql.DB, username string) (*models.Student, error) {
	row := database.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE username = ?`, username)
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get student by username: %w", err)
	}
	return s, nil
}

// FindStudentByLogin matches either the id or the username. Students whose
// credentials were never changed log in with their id.
func FindStudentByLogin(ctx context.Context, database *sql.DB, login string) (*models.Student, error) {
	row := database.QueryRowContext(ctx, `
SELECT `+studentCols+` FROM students
WHERE id = ? OR username = ? OR (username IS NULL AND id = ?)
LIMIT 1`, login, login, login)
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find student by login: %w", err)
	}
	return s, nil
}

func queryStudents(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.Student, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var out []models.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ListStudents returns all rows, archived included; the sync pass pushes the
// full table.
func ListStudents(ctx context.Context, database *sql.DB) ([]models.Student, error) {
	return queryStudents(ctx, database, `SELECT `+studentCols+` FROM students ORDER BY grade, section, last_name`)
}

func ListActiveStudents(ctx context.Context, database *sql.DB) ([]models.Student, error) {
	return queryStudents(ctx, database, `SELECT `+studentCols+` FROM students WHERE is_archived = 0 ORDER BY grade, section, last_name`)
}

func ListArchivedStudents(ctx context.Context, database *sql.DB) ([]models.Student, error) {
	return queryStudents(ctx, database, `SELECT `+studentCols+` FROM students WHERE is_archived = 1 ORDER BY last_name`)
}

// ListStudentsByClass returns the active roster of one section.
func ListStudentsByClass(ctx context.Context, database *sql.DB, grade, section string) ([]models.Student, error) {
	return queryStudents(ctx, database, `
SELECT `+studentCols+` FROM students
WHERE grade = ? AND section = ? AND is_archived = 0
ORDER BY last_name`, grade, section)
}

// ListAllStudentsByClass includes archived students, for attendance history.
func ListAllStudentsByClass(ctx context.Context, database *sql.DB, grade, section string) ([]models.Student, error) {
	return queryStudents(ctx, database, `
SELECT `+studentCols+` FROM students
WHERE grade = ? AND section = ?
ORDER BY last_name`, grade, section)
}

func CountStudentsByClass(ctx context.Context, database *sql.DB, grade, section string) (int, error) {
	var n int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM students WHERE grade = ? AND section = ? AND is_archived = 0`,
		grade, section).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return n, nil
}

// SetStudentArchived flips only the archive flag.
func SetStudentArchived(ctx context.Context, database *sql.DB, id string, archived bool) error {
	_, err := database.ExecContext(ctx, `UPDATE students SET is_archived = ? WHERE id = ?`, archived, id)
	if err != nil {
		return fmt.Errorf("set student %s archived=%v: %w", id, archived, err)
	}
	return nil
}

func UpdateStudentSection(ctx context.Context, database *sql.DB, id, section string) error {
	_, err := database.ExecContext(ctx, `UPDATE students SET section = ? WHERE id = ?`, section, id)
	if err != nil {
		return fmt.Errorf("update student %s section: %w", id, err)
	}
	return nil
}

func UpdateStudentCredentials(ctx context.Context, database *sql.DB, id, username, password string) error {
	_, err := database.ExecContext(ctx, `
UPDATE students SET username = ?, password = ?, has_changed_credentials = 1 WHERE id = ?`,
		username, password, id)
	if err != nil {
		return fmt.Errorf("update student %s credentials: %w", id, err)
	}
	return nil
}

func DeleteStudent(ctx context.Context, database *sql.DB, id string) error {
	_, err := database.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete student %s: %w", id, err)
	}
	return nil
}
