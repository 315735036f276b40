package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sqlx.DB
type DB struct {
	*sqlx.DB

	// writeMu serializes inserts so concurrent submissions never race on
	// the single SQLite writer.
	writeMu sync.Mutex
}

// New creates a new database connection
func New(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create database directory: %w", ErrStorage, err)
	}

	// Connect with WAL mode enabled and a busy timeout for concurrent readers
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=20000&_synchronous=FULL", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %w", ErrStorage, err)
	}

	return &DB{DB: db}, nil
}

// Migrate runs database migrations. It is safe to call on every start.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("%w: failed to run migrations: %w", ErrStorage, err)
	}
	return nil
}
