package db

import (
	"database/sql"
)

// Database is a connectable relational store backing the asset and
// publication repositories.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
