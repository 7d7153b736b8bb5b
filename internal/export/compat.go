package export

import "github.com/soomaali-corpus/corpusmetrics/internal/metrics"

// CompatContext is the legacy-name compatibility mapping: which historical
// flat metric name corresponds to which canonical, pipeline-scoped name.
// It is an explicit value passed where needed rather than package state, so
// schema-version behavior stays deterministic and testable in isolation.
type CompatContext struct {
	// aliases maps legacy flat names to their canonical replacement per
	// pipeline type. The legacy names predate the layered model and were
	// reused across pipeline types with different meanings.
	aliases map[string]map[metrics.PipelineType]string
}

// DefaultCompatContext returns the mapping for the known legacy vocabulary.
func DefaultCompatContext() CompatContext {
	return CompatContext{
		aliases: map[string]map[metrics.PipelineType]string{
			"fetch_success_rate": {
				metrics.PipelineWebScraping:      metrics.MetricHTTPRequestSuccessRate,
				metrics.PipelineFileProcessing:   metrics.MetricFileExtractionSuccessRate,
				metrics.PipelineStreamProcessing: metrics.MetricStreamConnectionSuccessRate,
			},
			"extraction_rate": {
				metrics.PipelineWebScraping:    metrics.MetricContentExtractionRate,
				metrics.PipelineFileProcessing: metrics.MetricExtractionEfficiency,
			},
		},
	}
}

// Replacement returns the canonical name for a legacy metric under the given
// pipeline type, or "" when the name has no alias.
func (c CompatContext) Replacement(legacyName string, pt metrics.PipelineType) string {
	return c.aliases[legacyName][pt]
}

// NormalizeStatistics copies legacy-named values onto their canonical names
// in place, without removing the legacy keys (additive-only evolution).
func (c CompatContext) NormalizeStatistics(pt metrics.PipelineType, stats map[string]any) {
	for legacy, perType := range c.aliases {
		canonical := perType[pt]
		if canonical == "" {
			continue
		}
		if value, ok := stats[legacy]; ok {
			if _, exists := stats[canonical]; !exists {
				stats[canonical] = value
			}
		}
	}
}
