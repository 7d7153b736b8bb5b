package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/soomaali-corpus/corpusmetrics/internal/aggregate"
	"github.com/soomaali-corpus/corpusmetrics/internal/config"
	"github.com/soomaali-corpus/corpusmetrics/internal/export"
	"github.com/soomaali-corpus/corpusmetrics/internal/foundation/errors"
	"github.com/soomaali-corpus/corpusmetrics/internal/logfields"
	"github.com/soomaali-corpus/corpusmetrics/internal/runstore"
)

// SummaryFileName is the aggregate summary written next to the run documents.
const SummaryFileName = "corpus_summary.json"

// SummaryPublisher pushes a freshly built summary to external consumers.
type SummaryPublisher interface {
	PublishSummary(summary aggregate.Summary) error
}

// Daemon watches a metrics directory of exported run documents, keeps the
// run history store current, and republishes aggregate corpus summaries.
type Daemon struct {
	cfg       *config.Config
	store     runstore.Store
	prom      *export.PromTextExporter
	publisher SummaryPublisher
}

// New creates a daemon over the given configuration and run store.
func New(cfg *config.Config, store runstore.Store) *Daemon {
	d := &Daemon{cfg: cfg, store: store}
	if cfg.Export.Prometheus.Enabled {
		d.prom = export.NewPromTextExporter(cfg.Export.Prometheus.Namespace)
	}
	return d
}

// SetPublisher attaches a summary publisher. Optional.
func (d *Daemon) SetPublisher(p SummaryPublisher) { d.publisher = p }

// Refresh rescans the metrics directory, records every parseable run in the
// history store, and rebuilds the aggregate summary from the latest run of
// each source. Unparseable documents are logged and skipped so one corrupt
// file cannot take the whole corpus view down.
func (d *Daemon) Refresh(ctx context.Context) (aggregate.Summary, error) {
	pattern := filepath.Join(d.cfg.MetricsDir, "*_processing.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return aggregate.Summary{}, errors.WrapError(err, errors.CategoryDaemon, "failed to scan metrics directory").
			WithContext("dir", d.cfg.MetricsDir).
			Build()
	}

	latest := make(map[string]export.Document)
	for _, path := range paths {
		doc, err := export.ReadDocument(path)
		if err != nil {
			slog.Warn("Skipping unreadable run document", logfields.Path(path), logfields.Error(err))
			continue
		}

		if err := d.recordRun(ctx, doc); err != nil {
			slog.Warn("Failed to record run in history store", logfields.RunID(doc.RunID), logfields.Error(err))
		}

		prev, seen := latest[doc.Source]
		if !seen || doc.Timestamp.After(prev.Timestamp) {
			latest[doc.Source] = doc
		}
	}

	sources := make([]aggregate.SourceMetrics, 0, len(latest))
	for _, doc := range latest {
		source, _, pt, values, volume := export.SourceMetricsFromDocument(doc)
		sources = append(sources, aggregate.SourceMetrics{
			Source:         source,
			PipelineType:   pt,
			RecordsWritten: volume,
			Values:         values,
		})

		if d.prom != nil && doc.LayeredMetrics != nil {
			if _, err := d.prom.ExportFile(d.cfg.Export.Prometheus.Dir, doc); err != nil {
				slog.Warn("Failed to write Prometheus text file", logfields.RunID(doc.RunID), logfields.Error(err))
			}
		}
	}

	summary := aggregate.BuildSummary(sources)
	if err := d.writeSummary(summary); err != nil {
		return summary, err
	}

	if d.publisher != nil {
		if err := d.publisher.PublishSummary(summary); err != nil {
			slog.Warn("Failed to publish aggregate summary", logfields.Error(err))
		}
	}

	slog.Info("Refreshed aggregate summary",
		slog.Int("runs_scanned", len(paths)),
		slog.Int("sources", len(summary.Sources)),
		logfields.TotalVolume(summary.TotalVolume))

	return summary, nil
}

func (d *Daemon) recordRun(ctx context.Context, doc export.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal run document: %w", err)
	}
	return d.store.Put(ctx, runstore.RunRecord{
		RunID:        doc.RunID,
		Source:       doc.Source,
		PipelineType: doc.PipelineType,
		FinishedAt:   doc.Timestamp,
		Document:     payload,
	})
}

func (d *Daemon) writeSummary(summary aggregate.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryDaemon, "failed to encode aggregate summary").Build()
	}

	path := filepath.Join(d.cfg.MetricsDir, SummaryFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryDaemon, "failed to write aggregate summary").
			WithContext("path", path).
			Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.WrapError(err, errors.CategoryDaemon, "failed to finalize aggregate summary").
			WithContext("path", path).
			Build()
	}
	return nil
}

// Run performs an initial refresh and then keeps the summary current until
// the context is canceled, via the directory watcher and the periodic
// refresh schedule.
func (d *Daemon) Run(ctx context.Context) error {
	if _, err := d.Refresh(ctx); err != nil {
		return err
	}

	var watcher *MetricsWatcher
	if d.cfg.Daemon.Watch {
		var err error
		watcher, err = NewMetricsWatcher(d.cfg.MetricsDir, d.cfg.Daemon.Debounce, func(ctx context.Context) {
			if _, err := d.Refresh(ctx); err != nil {
				slog.Error("Refresh after file change failed", "error", err)
			}
		})
		if err != nil {
			return errors.WrapError(err, errors.CategoryDaemon, "failed to create metrics watcher").Build()
		}
		if err := watcher.Start(ctx); err != nil {
			return errors.WrapError(err, errors.CategoryDaemon, "failed to start metrics watcher").Build()
		}
		defer func() { _ = watcher.Stop() }()
	}

	scheduler, err := NewScheduler()
	if err != nil {
		return errors.WrapError(err, errors.CategoryDaemon, "failed to create scheduler").Build()
	}
	if _, err := scheduler.SchedulePeriodicRefresh(d.cfg.Daemon.ExportInterval, func(ctx context.Context) {
		if _, err := d.Refresh(ctx); err != nil {
			slog.Error("Scheduled refresh failed", "error", err)
		}
	}); err != nil {
		return errors.WrapError(err, errors.CategoryDaemon, "failed to schedule periodic refresh").Build()
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	slog.Info("Daemon running",
		"metrics_dir", d.cfg.MetricsDir,
		"watch", d.cfg.Daemon.Watch,
		"export_interval", d.cfg.Daemon.ExportInterval)

	<-ctx.Done()
	return nil
}
