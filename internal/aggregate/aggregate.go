package aggregate

import (
	"fmt"

	"github.com/soomaali-corpus/corpusmetrics/internal/foundation/errors"
	"github.com/soomaali-corpus/corpusmetrics/internal/metrics"
)

// Method selects the statistical combination applied by Aggregate.
type Method string

const (
	// VolumeWeightedMean weights each source's value by its records_written,
	// so a 10,000-record source dominates a 20-record one the way it
	// dominates the combined corpus. This is the default.
	VolumeWeightedMean Method = "volume_weighted_mean"
	// HarmonicMean penalizes low outliers more heavily than an arithmetic
	// mean; use it when a single bad source should dominate the signal.
	HarmonicMean Method = "harmonic_mean"
	// WeightedHarmonicMean is Σw / Σ(w/x) with records_written weights.
	WeightedHarmonicMean Method = "weighted_harmonic_mean"
	// Min and Max give worst and best case across sources.
	Min Method = "min"
	Max Method = "max"
	// Sum is valid for additive counts only, never rates.
	Sum Method = "sum"
)

// ParseMethod converts a string into a Method, rejecting unknowns.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case VolumeWeightedMean, HarmonicMean, WeightedHarmonicMean, Min, Max, Sum:
		return m, nil
	}
	return "", fmt.Errorf("unknown aggregation method: %q", s)
}

// SourceMetrics is one source's finalized, immutable run snapshot as seen by
// the aggregation layer: identity, volume, and a flat metric-name to value
// view. The Aggregator never mutates these; it only produces new results.
type SourceMetrics struct {
	Source         string                `json:"source"`
	PipelineType   metrics.PipelineType  `json:"pipeline_type"`
	RecordsWritten int64                 `json:"records_written"`
	Values         map[string]float64    `json:"values"`
}

// FromLayered flattens a finalized layered run into the aggregation view.
func FromLayered(lm metrics.LayeredMetrics) SourceMetrics {
	values := map[string]float64{
		metrics.MetricQualityPassRate:   lm.Quality.QualityPassRate(),
		metrics.MetricDeduplicationRate: lm.Quality.DeduplicationRate(),
		metrics.MetricRecordsWritten:    float64(lm.Volume.RecordsWritten),
		metrics.MetricBytesDownloaded:   float64(lm.Volume.BytesDownloaded),
	}
	if lm.Extraction != nil {
		for name, value := range lm.Extraction.DerivedRates() {
			values[name] = value
		}
	}
	return SourceMetrics{
		Source:         lm.Source,
		PipelineType:   lm.PipelineType,
		RecordsWritten: lm.Volume.RecordsWritten,
		Values:         values,
	}
}

// SourceContribution records one source's share of an aggregate so the
// result can be audited: which source dominates, and with what value.
type SourceContribution struct {
	Source               string  `json:"source"`
	Value                float64 `json:"value"`
	Weight               int64   `json:"weight"`
	ContributionFraction float64 `json:"contribution_fraction"`
}

// Result is one aggregated metric with its audit trail.
type Result struct {
	Metric      string               `json:"metric"`
	Method      Method               `json:"method"`
	Value       float64              `json:"value"`
	TotalVolume int64                `json:"total_volume"`
	ZeroVolume  bool                 `json:"zero_volume,omitempty"`
	Breakdown   []SourceContribution `json:"source_breakdown"`
}

// Aggregate combines metric across sources using method. The compatibility
// gate runs first; mixing pipeline types on a pipeline-specific metric is a
// hard error. Sources that do not carry the metric are skipped.
//
// Zero-volume sources are excluded from weighted computations. When every
// source has zero volume the result is 0 with ZeroVolume set, an expected
// steady state before any data has been collected, not an error.
func Aggregate(sources []SourceMetrics, metric string, method Method) (Result, error) {
	if err := ValidateCompatibility(sources, metric); err != nil {
		return Result{}, err
	}
	if method == Sum && !IsAdditive(metric) {
		return Result{}, errors.ValidationError(fmt.Sprintf(
			"sum is only defined for additive counts, not %s", metric)).Build()
	}

	result := Result{Metric: metric, Method: method}

	var points []point
	for _, s := range sources {
		value, ok := s.Values[metric]
		if !ok {
			continue
		}
		result.TotalVolume += s.RecordsWritten
		points = append(points, point{source: s.Source, value: value, weight: s.RecordsWritten})
	}
	if len(points) == 0 {
		result.ZeroVolume = true
		return result, nil
	}

	weighted := method == VolumeWeightedMean || method == WeightedHarmonicMean
	var totalWeight int64
	for _, p := range points {
		totalWeight += p.weight
	}
	if weighted && totalWeight == 0 {
		result.ZeroVolume = true
		for _, p := range points {
			result.Breakdown = append(result.Breakdown, SourceContribution{Source: p.source, Value: p.value})
		}
		return result, nil
	}

	switch method {
	case VolumeWeightedMean:
		var sum float64
		for _, p := range points {
			sum += float64(p.weight) * p.value
		}
		result.Value = sum / float64(totalWeight)
	case HarmonicMean:
		result.Value = harmonicMean(points, false)
	case WeightedHarmonicMean:
		result.Value = harmonicMean(points, true)
	case Min:
		result.Value = points[0].value
		for _, p := range points[1:] {
			if p.value < result.Value {
				result.Value = p.value
			}
		}
	case Max:
		result.Value = points[0].value
		for _, p := range points[1:] {
			if p.value > result.Value {
				result.Value = p.value
			}
		}
	case Sum:
		for _, p := range points {
			result.Value += p.value
		}
	default:
		return Result{}, errors.ValidationError(fmt.Sprintf("unknown aggregation method: %q", method)).Build()
	}

	for _, p := range points {
		contribution := SourceContribution{Source: p.source, Value: p.value, Weight: p.weight}
		if weighted {
			contribution.ContributionFraction = float64(p.weight) / float64(totalWeight)
		} else {
			contribution.ContributionFraction = 1 / float64(len(points))
		}
		result.Breakdown = append(result.Breakdown, contribution)
	}
	return result, nil
}

// point is one source's (value, weight) pair for a single metric.
type point struct {
	source string
	value  float64
	weight int64
}

// harmonicMean computes Σw / Σ(w/x) over the points, with w=1 for the
// unweighted form. A zero value makes the mean 0 (the limit as any value
// approaches 0), matching the method's intent of letting the worst source
// dominate. Zero-weight points are skipped in the weighted form.
func harmonicMean(points []point, weighted bool) float64 {
	var weightSum, reciprocalSum float64
	for _, p := range points {
		w := 1.0
		if weighted {
			w = float64(p.weight)
			if w == 0 {
				continue
			}
		}
		if p.value == 0 {
			return 0
		}
		weightSum += w
		reciprocalSum += w / p.value
	}
	if reciprocalSum == 0 {
		return 0
	}
	return weightSum / reciprocalSum
}

// VolumeWeightedQuality is the canonical corpus-health aggregate: the
// volume-weighted mean of quality_pass_rate across all sources.
func VolumeWeightedQuality(sources []SourceMetrics) (Result, error) {
	return Aggregate(sources, metrics.MetricQualityPassRate, VolumeWeightedMean)
}
