// Package session keeps a registry of capture runs in a local SQLite file.
//
// The registry is bookkeeping, not capture data: the event artifacts live in
// JSON files and stay valid even when the registry is disabled or broken.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // CGO-free SQLite
)

// ErrUnknownRun reports a run id that is not in the registry.
var ErrUnknownRun = errors.New("unknown run id")

// Totals are the buffer sizes recorded when a run finishes.
type Totals struct {
	UIEvents int
	Clicks   int
	URLs     int
}

// Run is one capture session as recorded in the registry.
type Run struct {
	ID         string
	StartedAt  time.Time
	EndedAt    *time.Time
	Totals     Totals
	FlushError string // empty when the final flush succeeded
}

// Options configure the registry store.
type Options struct {
	// Path locates the SQLite file. Required.
	Path string
	// Clock supplies timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// Store wraps the registry database.
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

// Open opens or creates the registry at opts.Path.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("session store requires a database path")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", opts.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, clock: clock}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS sessions(
	  id          TEXT PRIMARY KEY,
	  started_at  TEXT    NOT NULL,
	  ended_at    TEXT,
	  ui_events   INTEGER NOT NULL DEFAULT 0,
	  clicks      INTEGER NOT NULL DEFAULT 0,
	  urls        INTEGER NOT NULL DEFAULT 0,
	  flush_error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
	`)
	if err != nil {
		return fmt.Errorf("create session tables: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Start registers a new run and returns its id.
func (s *Store) Start(ctx context.Context) (string, error) {
	id := uuid.NewString()
	started := s.clock().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(id, started_at) VALUES(?, ?)`, id, started); err != nil {
		return "", fmt.Errorf("register run: %w", err)
	}
	return id, nil
}

// Finish stamps the end of a run with its buffer totals. A non-nil flushErr
// records that the JSON artifacts could not all be written.
func (s *Store) Finish(ctx context.Context, id string, totals Totals, flushErr error) error {
	ended := s.clock().UTC().Format(time.RFC3339Nano)
	var flushMsg any
	if flushErr != nil {
		flushMsg = flushErr.Error()
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, ui_events = ?, clicks = ?, urls = ?, flush_error = ? WHERE id = ?`,
		ended, totals.UIEvents, totals.Clicks, totals.URLs, flushMsg, id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrUnknownRun)
	}
	return nil
}

// List returns all registered runs, most recent first.
func (s *Store) List(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, ended_at, ui_events, clicks, urls, flush_error
		 FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			ended    sql.NullString
			flushMsg sql.NullString
		)
		if err := rows.Scan(&run.ID, &started, &ended,
			&run.Totals.UIEvents, &run.Totals.Clicks, &run.Totals.URLs, &flushMsg); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parse run %s start time: %w", run.ID, err)
		}
		if ended.Valid {
			endedAt, err := time.Parse(time.RFC3339Nano, ended.String)
			if err != nil {
				return nil, fmt.Errorf("parse run %s end time: %w", run.ID, err)
			}
			run.EndedAt = &endedAt
		}
		run.FlushError = flushMsg.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Delete removes a run from the registry.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrUnknownRun)
	}
	return nil
}
