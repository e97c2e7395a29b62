package sqlite

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of all database migrations.
// Each statement must be safe to run against a database that already has it.
var migrations = []migration{
	{
		version: 1,
		name:    "create_assets_table",
		up: `
			CREATE TABLE IF NOT EXISTS assets (
				id TEXT PRIMARY KEY,
				storage_path TEXT NOT NULL UNIQUE,
				filename TEXT NOT NULL,
				original_name TEXT NOT NULL,
				mime_type TEXT NOT NULL,
				size INTEGER NOT NULL,
				width INTEGER,
				height INTEGER,
				alt_text TEXT NOT NULL DEFAULT '',
				caption TEXT NOT NULL DEFAULT '',
				hash TEXT NOT NULL,
				owner_id TEXT NOT NULL,
				remote_media_id INTEGER,
				remote_url TEXT,
				updated_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_assets_owner_created
			ON assets(owner_id, created_at DESC);
		`,
	},
	{
		version: 2,
		name:    "create_publications_table",
		up: `
			CREATE TABLE IF NOT EXISTS publications (
				remote_id INTEGER PRIMARY KEY,
				owner_id TEXT NOT NULL,
				title TEXT NOT NULL,
				status TEXT NOT NULL,
				url TEXT NOT NULL,
				featured_media_id INTEGER NOT NULL DEFAULT 0,
				scheduled_at TIMESTAMP,
				updated_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_publications_owner_created
			ON publications(owner_id, created_at DESC);
		`,
	},
}

// runMigrations executes all pending migrations
func runMigrations(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion := 0
	err = conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if err := applyMigration(conn, m); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(conn *sql.DB, m migration) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
	}

	if _, err := tx.Exec(m.up); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
	}

	return nil
}
