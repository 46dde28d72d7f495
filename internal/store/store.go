// Package store provides SQLite persistence for jobs and run telemetry.
// From the pipeline's perspective both tables are append-only: jobs are
// inserted once per run and updated only by the follow-up subsystem; runs
// are inserted at pipeline start and completed exactly once.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const jobsDDL = `
CREATE TABLE IF NOT EXISTS jobs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    company         TEXT    NOT NULL,
    role            TEXT    NOT NULL,
    jd_hash         TEXT    NOT NULL,
    fit_score       INTEGER,
    resume_used     TEXT,
    drive_link      TEXT,
    status          TEXT    DEFAULT 'applied',
    follow_up_count INTEGER DEFAULT 0,
    created_at      TEXT    NOT NULL,
    updated_at      TEXT    NOT NULL
);`

const runsDDL = `
CREATE TABLE IF NOT EXISTS runs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id          TEXT    NOT NULL UNIQUE,
    agent           TEXT    NOT NULL,
    job_id          INTEGER REFERENCES jobs(id),
    status          TEXT    NOT NULL DEFAULT 'started',
    eval_results    TEXT,
    tokens_used     INTEGER,
    cost_estimate   REAL,
    latency_ms      INTEGER,
    input_mode      TEXT,
    skip_upload     INTEGER,
    skip_calendar   INTEGER,
    errors          TEXT,
    context         TEXT,
    created_at      TEXT    NOT NULL,
    completed_at    TEXT
);`

// Store wraps the SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database file and ensures the schema exists.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	for _, ddl := range []string{jobsDDL, runsDDL} {
		if _, err := s.db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
