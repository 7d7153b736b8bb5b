package aggregate

import (
	"sort"
	"time"

	"github.com/soomaali-corpus/corpusmetrics/internal/metrics"
)

// Summary is the cross-source view of the corpus: every metric that can be
// aggregated over the given sources, each with its audit breakdown.
type Summary struct {
	GeneratedAt   time.Time               `json:"generated_at"`
	Sources       []string                `json:"sources"`
	PipelineTypes []metrics.PipelineType  `json:"pipeline_types"`
	TotalVolume   int64                   `json:"total_volume"`
	Metrics       map[string]Result       `json:"metrics"`
}

// BuildSummary aggregates every universal metric across all sources, plus
// every pipeline-specific metric when the sources happen to share one
// pipeline type. Counts are summed, rates volume-weighted. Metrics that
// cannot pass the compatibility gate are simply not part of the summary;
// the gate's hard-error behavior is for callers who ask for a specific
// metric explicitly.
func BuildSummary(sources []SourceMetrics) Summary {
	summary := Summary{
		GeneratedAt:   time.Now().UTC(),
		PipelineTypes: distinctPipelineTypes(sources),
		Metrics:       make(map[string]Result),
	}
	for _, s := range sources {
		summary.Sources = append(summary.Sources, s.Source)
		summary.TotalVolume += s.RecordsWritten
	}
	sort.Strings(summary.Sources)

	for _, metric := range summaryMetrics(sources) {
		method := VolumeWeightedMean
		if IsAdditive(metric) {
			method = Sum
		}
		result, err := Aggregate(sources, metric, method)
		if err != nil {
			// Pipeline-specific metric over mixed types: not part of the summary.
			continue
		}
		summary.Metrics[metric] = result
	}
	return summary
}

// summaryMetrics returns the union of metric names present in the sources,
// sorted for deterministic output.
func summaryMetrics(sources []SourceMetrics) []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range sources {
		for name := range s.Values {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
