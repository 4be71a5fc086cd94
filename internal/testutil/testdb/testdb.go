// Package testdb spins up a throwaway migrated SQLite database for tests.
package testdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/db"
)

// Start opens a fresh database under t.TempDir with all migrations
// applied. The handle is closed automatically when the test ends.
func Start(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return database
}
