// Package journal records the outcome of each processed input file in a
// SQLite database, one row per file per conversion run.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Conversion statuses recorded per file.
const (
	StatusConverted = "converted"
	StatusFailed    = "failed"
)

// Entry is one journal row.
type Entry struct {
	ID        int64
	RunID     string
	File      string
	Status    string
	Detail    string
	Units     int
	Timestamp time.Time
}

// Store implements the journal using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a new SQLite-backed journal.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		file TEXT NOT NULL,
		status TEXT NOT NULL,
		detail TEXT,
		units INTEGER NOT NULL DEFAULT 0,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_id ON conversions(run_id);
	CREATE INDEX IF NOT EXISTS idx_file ON conversions(file);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends one conversion outcome to the journal.
func (s *Store) Record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO conversions (run_id, file, status, detail, units, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		e.RunID, e.File, e.Status, e.Detail, e.Units, ts.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

// ByRun retrieves all entries recorded under one run identifier.
func (s *Store) ByRun(ctx context.Context, runID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, file, status, detail, units, timestamp FROM conversions WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ByFile retrieves the conversion history of one input file, newest first.
func (s *Store) ByFile(ctx context.Context, file string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, file, status, detail, units, timestamp FROM conversions WHERE file = ? ORDER BY id DESC",
		file,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.File, &e.Status, &e.Detail, &e.Units, &ts); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
