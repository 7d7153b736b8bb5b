package metrics

import "fmt"

// Snapshot is the legacy flat-statistics view of a run, kept for consumers
// that predate the layered model. Field names are pipeline-type-generic and
// therefore ambiguous; the attached semantics and deprecation warnings tell
// readers which layered metric to migrate to.
type Snapshot struct {
	RunID        string       `json:"run_id"`
	Source       string       `json:"source"`
	PipelineType PipelineType `json:"pipeline_type"`

	Statistics          map[string]any    `json:"statistics"`
	Semantics           map[string]string `json:"_metric_semantics"`
	DeprecationWarnings []string          `json:"_deprecation_warnings,omitempty"`
}

// Snapshot computes the legacy flat statistics with derived rates. The result
// is built fresh from the counters on every call, so repeated calls without
// intervening writes are identical.
func (c *Collector) Snapshot() *Snapshot {
	lm := c.Layered()

	c.mu.Lock()
	stats := make(map[string]any, len(c.counters)+8)
	for name, value := range c.counters {
		stats[name] = value
	}
	if len(c.errorKinds) > 0 {
		stats["errors"] = cloneMap(c.errorKinds)
	}
	if len(c.filterReasons) > 0 {
		stats["filter_breakdown"] = cloneMap(c.filterReasons)
	}
	c.mu.Unlock()

	stats[MetricQualityPassRate] = lm.Quality.QualityPassRate()
	stats[MetricDeduplicationRate] = lm.Quality.DeduplicationRate()
	stats["avg_record_size_bytes"] = lm.Volume.AvgRecordSizeBytes()
	stats["avg_record_length_chars"] = lm.Volume.AvgRecordLengthChars()

	snap := &Snapshot{
		RunID:        lm.RunID,
		Source:       lm.Source,
		PipelineType: lm.PipelineType,
		Statistics:   stats,
		Semantics: map[string]string{
			MetricQualityPassRate:     "fraction of received records that passed all content filters",
			MetricDeduplicationRate:   "fraction of received records rejected as duplicates",
			MetricRecordsWritten:      "records written to the corpus output",
			MetricBytesDownloaded:     "raw bytes fetched from the source",
			"total_chars":             "NFC-normalized character count of written records",
			"avg_record_size_bytes":   "bytes_downloaded / records_written (0 when no records)",
			"avg_record_length_chars": "total_chars / records_written (0 when no records)",
		},
	}

	// fetch_success_rate is the historical catch-all rate. Its meaning differs
	// per pipeline type, which is exactly why the layered model exists. It is
	// still emitted for old dashboards, aliased to the scoped metric.
	replacement := ""
	for name, value := range lm.Extraction.DerivedRates() {
		stats[name] = value
		snap.Semantics[name] = fmt.Sprintf("%s extraction rate, comparable only within pipeline_type=%s", name, lm.PipelineType)
	}
	switch ext := lm.Extraction.(type) {
	case WebScrapingExtraction:
		stats["fetch_success_rate"] = ext.HTTPSuccessRate()
		replacement = MetricHTTPRequestSuccessRate
	case FileProcessingExtraction:
		stats["fetch_success_rate"] = ext.FileExtractionRate()
		replacement = MetricFileExtractionSuccessRate
	case StreamProcessingExtraction:
		stats["fetch_success_rate"] = ext.StreamReliability()
		replacement = MetricStreamConnectionSuccessRate
	}
	if replacement != "" {
		snap.Semantics["fetch_success_rate"] = fmt.Sprintf("deprecated alias of %s", replacement)
		snap.DeprecationWarnings = append(snap.DeprecationWarnings, fmt.Sprintf(
			"fetch_success_rate is ambiguous for pipeline type %s; use %s instead",
			lm.PipelineType, replacement))
	}

	return snap
}
