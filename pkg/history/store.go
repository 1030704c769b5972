// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/xataio/sandbench/pkg/measurement"
)

// DefaultSchema is the Postgres schema holding the history tables.
const DefaultSchema = "sandbench"

var ErrNoRuns = errors.New("no benchmark runs have been pushed")

// ErrEmptyScopeName is returned when pushing a scope without a name. The
// empty scope holds the benchmark total.
var ErrEmptyScopeName = errors.New("scope names must not be empty")

const sqlInit = `
CREATE SCHEMA IF NOT EXISTS %[1]s;

CREATE TABLE IF NOT EXISTS %[1]s.runs (
	id			UUID PRIMARY KEY,
	git_sha		TEXT NOT NULL DEFAULT '',
	version		TEXT NOT NULL,
	created_at	TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS runs_created_at ON %[1]s.runs (created_at DESC);

-- One row per benchmark total (empty scope) and per scope
CREATE TABLE IF NOT EXISTS %[1]s.results (
	run_id					UUID NOT NULL REFERENCES %[1]s.runs(id) ON DELETE CASCADE,
	benchmark				TEXT NOT NULL,
	scope					TEXT NOT NULL DEFAULT '',
	calls					BIGINT NOT NULL CHECK (calls >= 0),
	instructions			BIGINT NOT NULL CHECK (instructions >= 0),
	heap_increase			BIGINT NOT NULL CHECK (heap_increase >= 0),
	stable_memory_increase	BIGINT NOT NULL CHECK (stable_memory_increase >= 0),

	PRIMARY KEY (run_id, benchmark, scope)
);
`

// Run describes one pushed benchmark run.
type Run struct {
	ID        uuid.UUID `json:"id"`
	GitSHA    string    `json:"git_sha"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps the results of past benchmark runs in Postgres.
type Store struct {
	db     DB
	schema string
}

// New connects to the Postgres database at pgURL. The history tables live
// in schema.
func New(ctx context.Context, pgURL, schema string) (*Store, error) {
	if schema == "" {
		schema = DefaultSchema
	}

	dsn, err := withSearchPath(pgURL, schema)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to history database: %w", err)
	}

	return &Store{db: &RDB{DB: conn}, schema: schema}, nil
}

// Schema returns the schema holding the history tables.
func (s *Store) Schema() string {
	return s.schema
}

// Init creates the history tables if they do not exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(sqlInit, pq.QuoteIdentifier(s.schema)))
	return err
}

// IsInitialized checks if the history tables exist.
func (s *Store) IsInitialized(ctx context.Context) (bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = 'runs')",
		s.schema)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var exists bool
	if err := scanFirstValue(rows, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Push records a run and its results in one transaction.
func (s *Store) Push(ctx context.Context, gitSHA, version string, results measurement.Results) (*Run, error) {
	for _, name := range results.Names() {
		if _, ok := results[name].Scopes[""]; ok {
			return nil, fmt.Errorf("benchmark %s: %w", name, ErrEmptyScopeName)
		}
	}

	run := &Run{ID: uuid.New(), GitSHA: gitSHA, Version: version}

	err := s.db.WithRetryableTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			"INSERT INTO runs (id, git_sha, version) VALUES ($1, $2, $3) RETURNING created_at",
			run.ID, run.GitSHA, run.Version).Scan(&run.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO results
			(run_id, benchmark, scope, calls, instructions, heap_increase, stable_memory_increase)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		insert := func(bench, scope string, m measurement.Measurement) error {
			_, err := stmt.ExecContext(ctx, run.ID, bench, scope,
				int64(m.Calls), int64(m.Instructions), int64(m.HeapIncrease), int64(m.StableMemoryIncrease))
			if err != nil {
				return fmt.Errorf("inserting results of %s: %w", bench, err)
			}
			return nil
		}

		for _, name := range results.Names() {
			r := results[name]
			if err := insert(name, "", r.Total); err != nil {
				return err
			}
			for _, scope := range r.ScopeNames() {
				if err := insert(name, scope, r.Scopes[scope]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Runs returns the most recent runs, newest first. A non-positive limit
// returns every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT id, git_sha, version, created_at FROM runs ORDER BY created_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.GitSHA, &r.Version, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Latest returns the most recent run and its results, or ErrNoRuns.
func (s *Store) Latest(ctx context.Context) (*Run, measurement.Results, error) {
	runs, err := s.Runs(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	if len(runs) == 0 {
		return nil, nil, ErrNoRuns
	}

	results, err := s.Results(ctx, runs[0].ID)
	if err != nil {
		return nil, nil, err
	}
	return &runs[0], results, nil
}

// Results returns the results recorded for a run.
func (s *Store) Results(ctx context.Context, runID uuid.UUID) (measurement.Results, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT benchmark, scope, calls, instructions, heap_increase, stable_memory_increase
		FROM results WHERE run_id = $1`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := measurement.Results{}
	for rows.Next() {
		var bench, scope string
		var calls, instructions, heap, stable int64
		if err := rows.Scan(&bench, &scope, &calls, &instructions, &heap, &stable); err != nil {
			return nil, err
		}

		m := measurement.Measurement{
			Calls:                uint64(calls),
			Instructions:         uint64(instructions),
			HeapIncrease:         uint64(heap),
			StableMemoryIncrease: uint64(stable),
		}

		r := results[bench]
		if scope == "" {
			r.Total = m
		} else {
			if r.Scopes == nil {
				r.Scopes = map[string]measurement.Measurement{}
			}
			r.Scopes[scope] = m
		}
		results[bench] = r
	}
	return results, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// scanFirstValue scans the first value with the assumption that rows
// contains a single row with a single value.
func scanFirstValue[T any](rows *sql.Rows, dest *T) error {
	if rows.Next() {
		if err := rows.Scan(dest); err != nil {
			return err
		}
	}
	return rows.Err()
}
