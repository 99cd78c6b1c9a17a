// Package trace records script runs in a SQLite database: one row per
// run, one row per executed primitive, so a failed normalization can be
// replayed against the exact line that broke it.
package trace

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dictools/rcmod/internal/dsl"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Store is a durable trace log backed by SQLite in WAL mode.
type Store struct {
	db *sql.DB
}

// Open creates or opens a trace database at the given path, applying
// pragmas and the schema. Idempotent.
//
// The connection pool is capped at one connection: SQLite allows a
// single writer, and the trace is written from a single goroutine.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trace database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect trace database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply trace schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("set user_version: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Run is one recorded script execution.
type Run struct {
	ID         string
	Script     string
	Source     string
	StartedAt  string
	FinishedAt string
	Status     string
}

// Step is one executed primitive within a run.
type Step struct {
	RunID     string
	Seq       int
	Line      int
	Primitive string
	Text      string
	Status    string
}

// Recorder tracks a single in-progress run. Not safe for concurrent
// use; the script runner invokes it line by line.
type Recorder struct {
	store *Store
	runID string
	seq   int
	err   error
}

// BeginRun registers a new run and returns its recorder. script and
// source identify the inputs for later inspection.
func (s *Store) BeginRun(ctx context.Context, script, source string) (*Recorder, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, script, source) VALUES (?, ?, ?)
	`, id, script, source)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return &Recorder{store: s, runID: id}, nil
}

// RunID returns the run's identifier.
func (r *Recorder) RunID() string { return r.runID }

// Observer adapts the recorder to the script runner's callback. Write
// failures are surfaced through Err after the run, not mid-script: a
// broken trace must not abort a normalization that is otherwise fine.
func (r *Recorder) Observer() dsl.Observer {
	return func(line int, text, primitive, status string) {
		r.seq++
		_, err := r.store.db.Exec(`
			INSERT INTO steps (run_id, seq, line, primitive, text, status)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, seq) DO NOTHING
		`, r.runID, r.seq, line, primitive, text, status)
		if err != nil && r.err == nil {
			r.err = fmt.Errorf("record step %d: %w", r.seq, err)
		}
	}
}

// Err returns the first step-write failure, if any.
func (r *Recorder) Err() error { return r.err }

// Finish marks the run complete with a terminal status, normally
// "ok" or "fatal".
func (r *Recorder) Finish(ctx context.Context, status string) error {
	_, err := r.store.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, finished_at = ? WHERE id = ?
	`, status, time.Now().UTC().Format(time.RFC3339Nano), r.runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Runs lists recorded runs, most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, script, source, started_at, COALESCE(finished_at, ''), status
		FROM runs ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Script, &r.Source, &r.StartedAt, &r.FinishedAt, &r.Status); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Steps returns a run's executed primitives in script order.
func (s *Store) Steps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, line, primitive, text, status
		FROM steps WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var st Step
		if err := rows.Scan(&st.RunID, &st.Seq, &st.Line, &st.Primitive, &st.Text, &st.Status); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}
