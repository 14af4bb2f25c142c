// Package storage owns the application's SQLite database: opening it, tuning
// it for a single local process and migrating the schema.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps the shared database handle. Catalog persistence, the diagnostic
// error log and the daily wallpaper history live in it.
type DB struct {
	*sql.DB
	path string
}

// Open opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func Open(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// WAL lets the UI read the catalog while a download completion writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &DB{DB: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Path returns the file the database was opened from.
func (d *DB) Path() string {
	return d.path
}

func (d *DB) migrate() error {
	_, err := d.Exec(`
CREATE TABLE IF NOT EXISTS downloads (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    path TEXT NOT NULL,
    width INTEGER,
    height INTEGER,
    added_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS errorlogs (
    id INTEGER PRIMARY KEY NOT NULL,
    report_id TEXT NOT NULL,
    app_name TEXT NOT NULL CHECK (length(app_name) <= 200),
    error_title TEXT NOT NULL CHECK (length(error_title) <= 200),
    description TEXT NOT NULL,
    operation TEXT NOT NULL CHECK (length(operation) <= 200),
    params TEXT,
    severity TEXT NOT NULL CHECK (length(severity) <= 200),
    timestamp_occured TEXT NOT NULL,
    identifier TEXT NOT NULL,
    device_platform TEXT NOT NULL CHECK (length(device_platform) <= 200)
);

CREATE TABLE IF NOT EXISTS daily_runs (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    wallpaper_id TEXT NOT NULL,
    title TEXT NOT NULL,
    path TEXT NOT NULL,
    mode TEXT NOT NULL,
    ran_at TEXT NOT NULL
);
`)
	return err
}
