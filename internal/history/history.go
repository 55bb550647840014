// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists finished maintenance runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/logging"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when no run matches the requested id.
	ErrNotFound = errors.New("history: run not found")
	// ErrMissingKind is returned when a run is recorded without a kind.
	ErrMissingKind = errors.New("history: run kind required")
)

// DefaultListLimit caps List when the caller passes no limit.
const DefaultListLimit = 50

// =============================================================================
// SCHEMA
// =============================================================================

// schemaVersion tracks the database schema for future migrations.
const schemaVersion = 1

const schema = `
-- Metadata table for schema version
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Runs table: one row per finished maintenance task
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,           -- "clean: temp files", "optimize: power plan", ...
    state TEXT NOT NULL,          -- succeeded, failed, canceled
    started_at INTEGER NOT NULL,  -- Unix timestamp
    finished_at INTEGER NOT NULL, -- Unix timestamp
    files INTEGER NOT NULL DEFAULT 0,
    bytes INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    detail TEXT                   -- engine result JSON, opaque to the store
);

CREATE INDEX IF NOT EXISTS idx_runs_finished_at ON runs(finished_at);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
`

// =============================================================================
// TYPES
// =============================================================================

// Run is one recorded maintenance run. Detail carries the engine's own
// result as JSON; the store never looks inside it.
type Run struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	State      string          `json:"state"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Files      int64           `json:"files"`
	Bytes      int64           `json:"bytes"`
	Error      string          `json:"error,omitempty"`
	Detail     json.RawMessage `json:"detail,omitempty"`
}

// Totals aggregates lifetime savings across every recorded run.
type Totals struct {
	Runs  int64 `json:"runs"`
	Files int64 `json:"files"`
	Bytes int64 `json:"bytes"`
}

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed run log.
type Store struct {
	db   *sql.DB
	log  *logging.Logger
	path string
}

// Option configures a Store at construction.
type Option func(*Store)

// WithLogger sets the logger. Defaults to the process-wide logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// DefaultPath returns the history database location under the config
// directory.
func DefaultPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// New opens (or creates) the history database at path.
func New(path string, opts ...Option) (*Store, error) {
	s := &Store{
		log:  logging.Default(),
		path: path,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("history: create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection sidesteps
	// SQLITE_BUSY entirely for this low-traffic log.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: initialize schema: %w", err)
	}
	if _, err := db.Exec(
		`INSERT INTO metadata (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO NOTHING`, fmt.Sprint(schemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: initialize metadata: %w", err)
	}

	s.db = db
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// =============================================================================
// WRITES
// =============================================================================

// Record inserts a run and returns its id. A missing id gets a fresh uuid;
// zero timestamps default to now.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.Kind == "" {
		return "", ErrMissingKind
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, state, started_at, finished_at, files, bytes, error, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Kind, run.State, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Files, run.Bytes, run.Error, string(run.Detail))
	if err != nil {
		return "", fmt.Errorf("history: record run: %w", err)
	}

	s.log.Debug("history", "recorded %s run %s (%s)", run.Kind, run.ID, run.State)
	return run.ID, nil
}

// Prune deletes runs that finished more than age ago and reports how many
// went.
func (s *Store) Prune(ctx context.Context, age time.Duration) (int64, error) {
	if age <= 0 {
		return 0, errors.New("history: prune age must be positive")
	}
	cutoff := time.Now().Add(-age).Unix()

	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE finished_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("history", "pruned %d runs older than %s", n, age)
	}
	return n, nil
}

// =============================================================================
// READS
// =============================================================================

const runColumns = `id, kind, state, started_at, finished_at, files, bytes, error, COALESCE(detail, '')`

// List returns the most recent runs, newest first. A non-positive limit
// means DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY finished_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run by id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return run, err
}

// Totals aggregates lifetime run count, files removed, and bytes freed.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(files), 0), COALESCE(SUM(bytes), 0) FROM runs
	`).Scan(&t.Runs, &t.Files, &t.Bytes)
	if err != nil {
		return Totals{}, fmt.Errorf("history: totals: %w", err)
	}
	return t, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run               Run
		started, finished int64
		detail            string
	)
	if err := sc.Scan(&run.ID, &run.Kind, &run.State, &started, &finished,
		&run.Files, &run.Bytes, &run.Error, &detail); err != nil {
		return Run{}, err
	}
	run.StartedAt = time.Unix(started, 0)
	run.FinishedAt = time.Unix(finished, 0)
	if detail != "" {
		run.Detail = json.RawMessage(detail)
	}
	return run, nil
}
