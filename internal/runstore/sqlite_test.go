package runstore

import (
	"bytes"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/soomaali-corpus/corpusmetrics/internal/metrics"
)

func TestStorePutAndGet(t *testing.T) {
	// Create in-memory store
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	doc := []byte(`{"_schema_version":"3.0","_run_id":"run-1"}`)
	rec := RunRecord{
		RunID:        "run-1",
		Source:       "bbc_somali",
		PipelineType: metrics.PipelineWebScraping,
		FinishedAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Document:     doc,
	}

	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("failed to put run: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run-1")
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Source != "bbc_somali" {
		t.Errorf("expected source bbc_somali, got %s", got.Source)
	}
	if got.PipelineType != metrics.PipelineWebScraping {
		t.Errorf("expected pipeline_type web_scraping, got %s", got.PipelineType)
	}
	if !got.FinishedAt.Equal(rec.FinishedAt) {
		t.Errorf("expected finished_at %v, got %v", rec.FinishedAt, got.FinishedAt)
	}
	if !bytes.Equal(got.Document, doc) {
		t.Errorf("expected document %s, got %s", doc, got.Document)
	}
}

func TestStorePutReplacesExistingRun(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	rec := RunRecord{
		RunID:        "run-1",
		Source:       "bbc_somali",
		PipelineType: metrics.PipelineWebScraping,
		FinishedAt:   time.Now(),
		Document:     []byte(`{"v":1}`),
	}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("failed to put run: %v", err)
	}

	rec.Document = []byte(`{"v":2}`)
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("failed to replace run: %v", err)
	}

	runs, err := store.ListBySource(ctx, "bbc_somali")
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run after replace, got %d", len(runs))
	}
	if !bytes.Equal(runs[0].Document, []byte(`{"v":2}`)) {
		t.Errorf("expected replaced document, got %s", runs[0].Document)
	}
}

func TestStoreRejectsMissingRunID(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	err = store.Put(t.Context(), RunRecord{Source: "bbc_somali"})
	if err == nil {
		t.Fatal("expected error for record without run_id")
	}
}

func TestStoreGetMissingRun(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	_, err = store.GetByRunID(t.Context(), "no-such-run")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestStoreListBySourceOrdersOldestFirst(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	// Insert out of order
	for i, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		rec := RunRecord{
			RunID:        []string{"run-c", "run-a", "run-b"}[i],
			Source:       "voa_somali",
			PipelineType: metrics.PipelineWebScraping,
			FinishedAt:   base.Add(offset),
			Document:     []byte(`{}`),
		}
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("failed to put run: %v", err)
		}
	}

	runs, err := store.ListBySource(ctx, "voa_somali")
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, want := range []string{"run-a", "run-b", "run-c"} {
		if runs[i].RunID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, runs[i].RunID)
		}
	}
}

func TestStoreListRange(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		rec := RunRecord{
			RunID:        time.Duration(i).String() + "-run",
			Source:       "sabc_somali",
			PipelineType: metrics.PipelineFileProcessing,
			FinishedAt:   base.Add(time.Duration(i) * time.Hour),
			Document:     []byte(`{}`),
		}
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("failed to put run: %v", err)
		}
	}

	runs, err := store.ListRange(ctx, base.Add(time.Hour), base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("failed to list range: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs in range, got %d", len(runs))
	}
}
