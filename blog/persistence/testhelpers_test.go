package persistence

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dfryer1193/tusitala/shared/db/sqlite"
)

// setupTestDB creates a migrated SQLite database in a temp directory
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err := database.Connect(); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database.DB()
}
