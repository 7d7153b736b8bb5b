package metrics

// Canonical metric names. Universal metrics mean the same thing for every
// pipeline type; the rest only make sense within one type.
const (
	// Universal
	MetricQualityPassRate   = "quality_pass_rate"
	MetricDeduplicationRate = "deduplication_rate"
	MetricRecordsWritten    = "records_written"
	MetricBytesDownloaded   = "bytes_downloaded"

	// Web scraping
	MetricHTTPRequestSuccessRate = "http_request_success_rate"
	MetricContentExtractionRate  = "content_extraction_rate"

	// File processing
	MetricFileExtractionSuccessRate = "file_extraction_success_rate"
	MetricExtractionEfficiency      = "extraction_efficiency"

	// Stream processing
	MetricStreamConnectionSuccessRate = "stream_connection_success_rate"
	MetricStreamCompletionRate        = "stream_completion_rate"
	MetricDatasetCoverageRate         = "dataset_coverage_rate"
)

// FilterReasonDuplicate is the filter name the deduplication stage reports
// rejections under; the deduplication_rate derived metric is computed from it.
const FilterReasonDuplicate = "duplicate"
