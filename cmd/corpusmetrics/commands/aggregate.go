package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soomaali-corpus/corpusmetrics/internal/aggregate"
	"github.com/soomaali-corpus/corpusmetrics/internal/config"
	"github.com/soomaali-corpus/corpusmetrics/internal/export"
)

// AggregateCmd implements the 'aggregate' command.
type AggregateCmd struct {
	Metric string `short:"m" help:"Aggregate a single metric instead of building the full summary"`
	Method string `help:"Aggregation method for --metric" default:"volume_weighted_mean" enum:"volume_weighted_mean,harmonic_mean,weighted_harmonic_mean,min,max,sum"`
	Output string `short:"o" help:"Write the result to a file instead of stdout"`
}

func (a *AggregateCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	sources, err := loadSources(cfg.MetricsDir)
	if err != nil {
		return err
	}

	var result any
	if a.Metric != "" {
		method, err := aggregate.ParseMethod(a.Method)
		if err != nil {
			return err
		}
		r, err := aggregate.Aggregate(sources, a.Metric, method)
		if err != nil {
			return err
		}
		result = r
	} else {
		result = aggregate.BuildSummary(sources)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')

	if a.Output != "" {
		return os.WriteFile(a.Output, data, 0o644)
	}
	_, err = os.Stdout.Write(data)
	return err
}

// loadSources reads every run document under dir and keeps the latest run
// per source as the aggregation input.
func loadSources(dir string) ([]aggregate.SourceMetrics, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*_processing.json"))
	if err != nil {
		return nil, err
	}

	latest := make(map[string]export.Document)
	for _, path := range paths {
		doc, err := export.ReadDocument(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
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
	}
	return sources, nil
}
