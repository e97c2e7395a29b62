package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func connectTestDB(t *testing.T, path string) *SQLiteDB {
	t.Helper()
	database := NewSQLiteDB(&SQLiteConfig{Path: path})
	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return database
}

func TestRunMigrations(t *testing.T) {
	database := connectTestDB(t, filepath.Join(t.TempDir(), "test.db"))
	defer database.Close()

	conn := database.DB()

	objects := []struct {
		kind string
		name string
	}{
		{"table", "schema_migrations"},
		{"table", "assets"},
		{"table", "publications"},
		{"index", "idx_assets_owner_created"},
		{"index", "idx_publications_owner_created"},
	}

	for _, obj := range objects {
		var count int
		err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", obj.kind, obj.name).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to check %s %s: %v", obj.kind, obj.name, err)
		}
		if count != 1 {
			t.Errorf("%s %s not created", obj.kind, obj.name)
		}
	}

	var maxVersion int
	if err := conn.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&maxVersion); err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if maxVersion != len(migrations) {
		t.Errorf("schema version = %d, want %d", maxVersion, len(migrations))
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	database := connectTestDB(t, path)
	database.Close()

	database = connectTestDB(t, path)
	defer database.Close()

	var count int
	err := database.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("recorded %d migrations, want %d", count, len(migrations))
	}
}

func TestAssetsTableSchema(t *testing.T) {
	database := connectTestDB(t, filepath.Join(t.TempDir(), "test.db"))
	defer database.Close()

	conn := database.DB()

	_, err := conn.Exec(`
		INSERT INTO assets (id, storage_path, filename, original_name, mime_type, size, hash, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, "a1", "/uploads/temp/u1/abc.png", "abc.png", "photo.png", "image/png", 42, "deadbeef", "u1")
	if err != nil {
		t.Fatalf("Failed to insert asset: %v", err)
	}

	var width, remoteMediaID sql.NullInt64
	var remoteURL sql.NullString
	var altText string
	err = conn.QueryRow("SELECT width, remote_media_id, remote_url, alt_text FROM assets WHERE id = ?", "a1").
		Scan(&width, &remoteMediaID, &remoteURL, &altText)
	if err != nil {
		t.Fatalf("Failed to query asset: %v", err)
	}

	if width.Valid {
		t.Error("width should be NULL")
	}
	if remoteMediaID.Valid || remoteURL.Valid {
		t.Error("remote columns should be NULL before migration")
	}
	if altText != "" {
		t.Errorf("alt_text = %q, want empty default", altText)
	}

	_, err = conn.Exec(`
		INSERT INTO assets (id, storage_path, filename, original_name, mime_type, size, hash, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, "a2", "/uploads/temp/u1/abc.png", "abc.png", "photo.png", "image/png", 42, "deadbeef", "u1")
	if err == nil {
		t.Error("expected unique constraint violation on storage_path")
	}
}
