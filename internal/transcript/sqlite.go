// Package transcript stores received caption lines in SQLite so a session
// can be read back after the live view has moved on.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS captions (
		id TEXT PRIMARY KEY,
		session_code TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_captions_session ON captions(session_code, created_at);
	CREATE INDEX IF NOT EXISTS idx_captions_created_at ON captions(created_at);
`

// OpenDB opens the captions database at path, creating the directory when
// needed. SQLite allows a single writer, so the pool is capped at one
// connection.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_foreign_keys=1&_busy_timeout=60000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open captions database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping captions database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the captions table and its indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create captions schema: %w", err)
	}
	return nil
}
