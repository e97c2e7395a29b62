package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dfryer1193/tusitala/shared/db"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DefaultPath is used when no database path is configured
const DefaultPath = "./tusitala.db"

type SQLiteConfig struct {
	Path string
}

// SQLiteDB implements the db.Database interface for SQLite
type SQLiteDB struct {
	dbPath string
	db     *sql.DB
}

var _ db.Database = (*SQLiteDB)(nil)

// NewSQLiteDB creates a new SQLite database instance.
// An empty path falls back to DefaultPath.
func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	path := DefaultPath
	if cfg != nil && cfg.Path != "" {
		path = cfg.Path
	}
	return &SQLiteDB{
		dbPath: path,
	}
}

// Connect opens the database, applies pragmas and runs pending migrations
func (s *SQLiteDB) Connect() error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}

	if dir := filepath.Dir(s.dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-64000",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.db = conn
	log.Debug().Str("path", s.dbPath).Msg("Connected to SQLite database")

	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying *sql.DB instance
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}
