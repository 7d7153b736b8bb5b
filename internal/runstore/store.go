package runstore

import (
	"context"
	"time"

	"github.com/soomaali-corpus/corpusmetrics/internal/metrics"
)

// RunRecord is one finalized pipeline run as indexed by the history store.
// Document holds the full exported JSON; the remaining columns exist so runs
// can be listed and filtered without parsing every document.
type RunRecord struct {
	RunID        string
	Source       string
	PipelineType metrics.PipelineType
	FinishedAt   time.Time
	Document     []byte
}

// Store defines the interface for persisting and querying run history.
type Store interface {
	// Put inserts or replaces a run record.
	Put(ctx context.Context, rec RunRecord) error

	// GetByRunID retrieves one run.
	GetByRunID(ctx context.Context, runID string) (*RunRecord, error)

	// ListBySource retrieves all runs for a source, oldest first.
	ListBySource(ctx context.Context, source string) ([]RunRecord, error)

	// ListRange retrieves runs finished within a time range, oldest first.
	ListRange(ctx context.Context, start, end time.Time) ([]RunRecord, error)

	// Close closes the store and releases resources.
	Close() error
}
