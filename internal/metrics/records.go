package metrics

import "fmt"

// ConnectivityMetrics describes whether a run could reach its source at all.
// One instance exists per run; the Collector mutates it until the run ends.
type ConnectivityMetrics struct {
	ConnectionAttempted  bool    `json:"connection_attempted"`
	ConnectionSuccessful bool    `json:"connection_successful"`
	ConnectionDurationMS float64 `json:"connection_duration_ms,omitempty"`
	ConnectionError      string  `json:"connection_error,omitempty"`
}

// Validate checks local invariants. Soft inconsistencies come back as
// warnings; callers decide whether to treat them as fatal.
func (c ConnectivityMetrics) Validate() (bool, []string) {
	var warnings []string
	if !c.ConnectionAttempted {
		if c.ConnectionSuccessful {
			warnings = append(warnings, "connection_successful is set without connection_attempted")
		}
		if c.ConnectionDurationMS != 0 {
			warnings = append(warnings, "connection_duration_ms is set without connection_attempted")
		}
	}
	if c.ConnectionDurationMS < 0 {
		warnings = append(warnings, fmt.Sprintf("connection_duration_ms is negative: %g", c.ConnectionDurationMS))
	}
	return len(warnings) == 0, warnings
}

// QualityMetrics tracks filter outcomes. Pipeline-agnostic: every pipeline
// feeds extracted records through the same filter chain.
type QualityMetrics struct {
	RecordsReceived      int64            `json:"records_received"`
	RecordsPassedFilters int64            `json:"records_passed_filters"`
	FilterBreakdown      map[string]int64 `json:"filter_breakdown,omitempty"`
}

// QualityPassRate returns passed/received, or 0 when nothing was received.
func (q QualityMetrics) QualityPassRate() float64 {
	return safeRate(q.RecordsPassedFilters, q.RecordsReceived)
}

// TotalFiltered returns the number of records rejected by any filter.
func (q QualityMetrics) TotalFiltered() int64 {
	return q.RecordsReceived - q.RecordsPassedFilters
}

// DeduplicationRate returns the fraction of received records rejected as duplicates.
func (q QualityMetrics) DeduplicationRate() float64 {
	return safeRate(q.FilterBreakdown[FilterReasonDuplicate], q.RecordsReceived)
}

// Validate checks local invariants.
func (q QualityMetrics) Validate() (bool, []string) {
	var warnings []string
	if q.RecordsReceived < 0 || q.RecordsPassedFilters < 0 {
		warnings = append(warnings, "quality counters must not be negative")
	}
	if q.RecordsPassedFilters > q.RecordsReceived {
		warnings = append(warnings, fmt.Sprintf(
			"records_passed_filters (%d) exceeds records_received (%d)",
			q.RecordsPassedFilters, q.RecordsReceived))
	}
	var filtered int64
	for reason, n := range q.FilterBreakdown {
		if n < 0 {
			warnings = append(warnings, fmt.Sprintf("filter_breakdown[%s] is negative", reason))
		}
		filtered += n
	}
	if filtered > q.RecordsReceived-q.RecordsPassedFilters {
		warnings = append(warnings, fmt.Sprintf(
			"filter_breakdown sum (%d) exceeds records filtered out (%d)",
			filtered, q.RecordsReceived-q.RecordsPassedFilters))
	}
	return len(warnings) == 0, warnings
}

// VolumeMetrics tracks how much corpus material a run actually produced.
type VolumeMetrics struct {
	RecordsWritten  int64 `json:"records_written"`
	BytesDownloaded int64 `json:"bytes_downloaded"`
	TotalChars      int64 `json:"total_chars"`
}

// AvgRecordSizeBytes returns bytes per written record, or 0 when none were written.
func (v VolumeMetrics) AvgRecordSizeBytes() float64 {
	return safeRate(v.BytesDownloaded, v.RecordsWritten)
}

// AvgRecordLengthChars returns characters per written record, or 0 when none were written.
func (v VolumeMetrics) AvgRecordLengthChars() float64 {
	return safeRate(v.TotalChars, v.RecordsWritten)
}

// Validate checks local invariants.
func (v VolumeMetrics) Validate() (bool, []string) {
	var warnings []string
	if v.RecordsWritten < 0 || v.BytesDownloaded < 0 || v.TotalChars < 0 {
		warnings = append(warnings, "volume counters must not be negative")
	}
	return len(warnings) == 0, warnings
}

// safeRate divides numerator by denominator, returning 0 for an empty denominator.
func safeRate(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
