package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/napkin/pkg/napkin/category"
	"github.com/cognicore/napkin/pkg/napkin/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single writer; keeps PRAGMAs bound to the one connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS frequencies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	category TEXT NOT NULL,
	term TEXT NOT NULL,
	count INTEGER NOT NULL CHECK (count >= 0),
	UNIQUE(category, term)
);

CREATE INDEX IF NOT EXISTS idx_frequencies_rank ON frequencies(category, count DESC, id);

CREATE TABLE IF NOT EXISTS stats (
	name TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT UNIQUE NOT NULL,
	source TEXT,
	lang TEXT,
	flushed INTEGER NOT NULL DEFAULT 0,
	tokens INTEGER NOT NULL DEFAULT 0,
	started_at TEXT
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// Ping checks that the database answers queries.
func (s *sqliteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return err
	}
	var one int
	return s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}

// Increment adds one to the count of a term, creating the row on first use
func (s *sqliteStore) Increment(ctx context.Context, cat category.Category, term string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO frequencies (category, term, count) VALUES (?, ?, 1)
ON CONFLICT(category, term) DO UPDATE SET count=count+1;
`, string(cat), term)
	return err
}

// TopN returns the highest-count terms of a category. Ties are ordered by
// first insertion. n < 0 returns every entry.
func (s *sqliteStore) TopN(ctx context.Context, cat category.Category, n int) ([]store.Entry, error) {
	if n == 0 {
		return nil, nil
	}
	if n < 0 {
		// SQLite treats a negative LIMIT as no limit.
		n = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT term, count
FROM frequencies
WHERE category = ?
ORDER BY count DESC, id ASC
LIMIT ?;
`, string(cat), n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []store.Entry
	for rows.Next() {
		var e store.Entry
		if err := rows.Scan(&e.Term, &e.Count); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// IncrementStat adds one to a named counter
func (s *sqliteStore) IncrementStat(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO stats (name, value) VALUES (?, 1)
ON CONFLICT(name) DO UPDATE SET value=value+1;
`, name)
	return err
}

// SetTokenCount overwrites the total token counter
func (s *sqliteStore) SetTokenCount(ctx context.Context, n int64) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO stats (name, value) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET value=excluded.value;
`, category.TokenStat, n)
	return err
}

// Stats returns all counters
func (s *sqliteStore) Stats(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM stats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, rows.Err()
}

// Reset clears frequency tables and counters in one transaction
func (s *sqliteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM frequencies`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stats`); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordRun appends a run record
func (s *sqliteStore) RecordRun(ctx context.Context, r store.Run) error {
	flushed := 0
	if r.Flushed {
		flushed = 1
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, source, lang, flushed, tokens, started_at)
VALUES (?, ?, ?, ?, ?, ?);
`, r.ID, r.Source, r.Lang, flushed, r.Tokens, r.StartedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// Runs returns the most recent runs first; limit <= 0 returns all
func (s *sqliteStore) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, source, lang, flushed, tokens, started_at
FROM runs
ORDER BY seq DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var (
			r         store.Run
			flushed   int
			startedAt string
		)
		if err := rows.Scan(&r.ID, &r.Source, &r.Lang, &flushed, &r.Tokens, &startedAt); err != nil {
			return nil, err
		}
		r.Flushed = flushed != 0
		if startedAt != "" {
			ts, err := time.Parse(time.RFC3339Nano, startedAt)
			if err != nil {
				return nil, fmt.Errorf("parse started_at for run %s: %w", r.ID, err)
			}
			r.StartedAt = ts
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
