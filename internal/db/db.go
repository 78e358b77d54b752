// Package db provides SQLite database access for sodam.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jaehyo/sodam/internal/logging"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle used by the message repository.
type DB struct {
	*sql.DB
	logger zerolog.Logger
}

// Options controls how the database is opened.
type Options struct {
	// BusyTimeoutMs is how long to wait for a locked database (milliseconds).
	BusyTimeoutMs int
}

// Open opens (and creates, if needed) the database at path.
func Open(path string, opts Options) (*DB, error) {
	busyTimeout := opts.BusyTimeoutMs
	if busyTimeout <= 0 {
		busyTimeout = 5000
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)", path, sep, busyTimeout)

	handle, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := handle.Ping(); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &DB{DB: handle, logger: logging.Component("db")}
	if err := database.ensureSchema(context.Background()); err != nil {
		_ = handle.Close()
		return nil, err
	}
	return database, nil
}

// OpenInMemory opens a fresh in-memory database. Used by tests. The shared
// cache keeps pooled connections on the same database.
func OpenInMemory() (*DB, error) {
	database, err := Open("file::memory:?cache=shared", Options{})
	if err != nil {
		return nil, err
	}
	database.SetMaxOpenConns(1)
	return database, nil
}

func (d *DB) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS message (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			time TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS message_time_idx ON message(time)`,
	}

	for _, stmt := range statements {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
