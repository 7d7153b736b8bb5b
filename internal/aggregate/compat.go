package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/soomaali-corpus/corpusmetrics/internal/foundation/errors"
	"github.com/soomaali-corpus/corpusmetrics/internal/metrics"
)

// Class partitions metric names by where they are comparable.
type Class string

const (
	// ClassUniversal metrics mean the same thing for every pipeline type and
	// may be aggregated across any mix of sources.
	ClassUniversal Class = "universal"
	// ClassPipelineSpecific metrics are only comparable between sources that
	// share a pipeline type. Unknown metric names land here: misclassifying a
	// universal metric as specific blocks a valid aggregation, the reverse
	// silently produces a meaningless number.
	ClassPipelineSpecific Class = "pipeline_specific"
)

var universalMetrics = map[string]bool{
	metrics.MetricQualityPassRate:   true,
	metrics.MetricDeduplicationRate: true,
	metrics.MetricRecordsWritten:    true,
	metrics.MetricBytesDownloaded:   true,
}

// additiveMetrics are raw counts for which Sum is meaningful. Summing rates
// is always rejected.
var additiveMetrics = map[string]bool{
	metrics.MetricRecordsWritten:  true,
	metrics.MetricBytesDownloaded: true,
}

// Classify returns the compatibility class of a metric name.
func Classify(metric string) Class {
	if universalMetrics[metric] {
		return ClassUniversal
	}
	return ClassPipelineSpecific
}

// IsAdditive reports whether metric is a raw count that may be summed.
func IsAdditive(metric string) bool {
	return additiveMetrics[metric]
}

// ValidateCompatibility is the gate that must pass before any aggregation.
// Pipeline-specific metrics require every source to share one pipeline type;
// a violation is a hard error naming the metric and the conflicting types,
// because a vague "aggregation failed" is exactly the failure mode that let a
// 10.7% scraping rate average against 100% file rates into a fictitious 70%.
func ValidateCompatibility(sources []SourceMetrics, metric string) error {
	if Classify(metric) == ClassUniversal {
		return nil
	}

	types := distinctPipelineTypes(sources)
	if len(types) > 1 {
		return errors.CompatibilityError(fmt.Sprintf(
			"cannot aggregate %s: sources include %s pipeline types",
			metric, joinTypes(types))).
			WithContext("metric", metric).Build()
	}
	return nil
}

func distinctPipelineTypes(sources []SourceMetrics) []metrics.PipelineType {
	seen := make(map[metrics.PipelineType]bool)
	var types []metrics.PipelineType
	for _, s := range sources {
		if !seen[s.PipelineType] {
			seen[s.PipelineType] = true
			types = append(types, s.PipelineType)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func joinTypes(types []metrics.PipelineType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	if len(names) == 2 {
		return "both " + strings.Join(names, " and ")
	}
	return strings.Join(names, ", ")
}
