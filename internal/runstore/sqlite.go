package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/soomaali-corpus/corpusmetrics/internal/metrics"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based run history store.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		pipeline_type TEXT NOT NULL,
		finished_at INTEGER NOT NULL,
		document BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_finished_at ON runs(finished_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put inserts or replaces a run record. Re-exporting the same run overwrites
// the stored document rather than accumulating duplicates.
func (s *SQLiteStore) Put(ctx context.Context, rec RunRecord) error {
	if rec.RunID == "" {
		return fmt.Errorf("run record missing run_id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO runs (run_id, source, pipeline_type, finished_at, document) VALUES (?, ?, ?, ?, ?)",
		rec.RunID, rec.Source, string(rec.PipelineType), rec.FinishedAt.Unix(), rec.Document,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

// GetByRunID retrieves a single run, or sql.ErrNoRows wrapped if absent.
func (s *SQLiteStore) GetByRunID(ctx context.Context, runID string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT run_id, source, pipeline_type, finished_at, document FROM runs WHERE run_id = ?",
		runID,
	)

	rec, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	return rec, nil
}

// ListBySource retrieves all runs for a source, oldest first.
func (s *SQLiteStore) ListBySource(ctx context.Context, source string) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, source, pipeline_type, finished_at, document FROM runs WHERE source = ? ORDER BY finished_at",
		source,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// ListRange retrieves runs finished within a time range, oldest first.
func (s *SQLiteStore) ListRange(ctx context.Context, start, end time.Time) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, source, pipeline_type, finished_at, document FROM runs WHERE finished_at >= ? AND finished_at <= ? ORDER BY finished_at",
		start.Unix(), end.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var pipelineType string
	var finishedUnix int64

	if err := row.Scan(&rec.RunID, &rec.Source, &pipelineType, &finishedUnix, &rec.Document); err != nil {
		return nil, err
	}

	rec.PipelineType = metrics.PipelineType(pipelineType)
	rec.FinishedAt = time.Unix(finishedUnix, 0).UTC()
	return &rec, nil
}

func scanRuns(rows *sql.Rows) ([]RunRecord, error) {
	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
