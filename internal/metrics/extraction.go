package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/soomaali-corpus/corpusmetrics/internal/foundation/errors"
)

// ExtractionMetrics is the extraction layer of a run, polymorphic over the
// pipeline strategy. The three variants form a closed set; code that needs
// variant fields type-switches on the concrete type. Mixing variants is a
// construction-time failure, never a runtime surprise.
type ExtractionMetrics interface {
	// PipelineType returns the variant's pipeline type.
	PipelineType() PipelineType
	// Validate checks local invariants, returning warnings for soft violations.
	Validate() (bool, []string)
	// DerivedRates returns the variant's derived rate metrics keyed by
	// canonical metric name. Rates whose inputs are unknown are omitted.
	DerivedRates() map[string]float64

	isExtraction()
}

// WebScrapingExtraction is the extraction layer for HTTP + HTML sources.
type WebScrapingExtraction struct {
	HTTPRequestsAttempted  int64           `json:"http_requests_attempted"`
	HTTPRequestsSuccessful int64           `json:"http_requests_successful"`
	HTTPStatusDistribution map[int]int64   `json:"http_status_distribution,omitempty"`
	PagesParsed            int64           `json:"pages_parsed"`
	ContentExtracted       int64           `json:"content_extracted"`
}

func (WebScrapingExtraction) PipelineType() PipelineType { return PipelineWebScraping }
func (WebScrapingExtraction) isExtraction()              {}

// HTTPSuccessRate returns successful/attempted requests, scoped to requests
// actually attempted rather than URLs discovered.
func (w WebScrapingExtraction) HTTPSuccessRate() float64 {
	return safeRate(w.HTTPRequestsSuccessful, w.HTTPRequestsAttempted)
}

// ContentExtractionRate returns the fraction of parsed pages that yielded content.
func (w WebScrapingExtraction) ContentExtractionRate() float64 {
	return safeRate(w.ContentExtracted, w.PagesParsed)
}

func (w WebScrapingExtraction) DerivedRates() map[string]float64 {
	return map[string]float64{
		MetricHTTPRequestSuccessRate: w.HTTPSuccessRate(),
		MetricContentExtractionRate:  w.ContentExtractionRate(),
	}
}

func (w WebScrapingExtraction) Validate() (bool, []string) {
	var warnings []string
	if w.HTTPRequestsAttempted < 0 || w.HTTPRequestsSuccessful < 0 || w.PagesParsed < 0 || w.ContentExtracted < 0 {
		warnings = append(warnings, "web scraping counters must not be negative")
	}
	if w.HTTPRequestsSuccessful > w.HTTPRequestsAttempted {
		warnings = append(warnings, fmt.Sprintf(
			"http_requests_successful (%d) exceeds http_requests_attempted (%d)",
			w.HTTPRequestsSuccessful, w.HTTPRequestsAttempted))
	}
	if w.ContentExtracted > w.PagesParsed {
		warnings = append(warnings, fmt.Sprintf(
			"content_extracted (%d) exceeds pages_parsed (%d)", w.ContentExtracted, w.PagesParsed))
	}
	var distTotal int64
	for code, n := range w.HTTPStatusDistribution {
		if n < 0 {
			warnings = append(warnings, fmt.Sprintf("http_status_distribution[%d] is negative", code))
		}
		distTotal += n
	}
	if distTotal > w.HTTPRequestsAttempted {
		warnings = append(warnings, fmt.Sprintf(
			"http_status_distribution sum (%d) exceeds http_requests_attempted (%d)",
			distTotal, w.HTTPRequestsAttempted))
	}
	return len(warnings) == 0, warnings
}

// FileProcessingExtraction is the extraction layer for bulk dump sources.
type FileProcessingExtraction struct {
	FilesDiscovered  int64            `json:"files_discovered"`
	FilesProcessed   int64            `json:"files_processed"`
	FilesFailed      int64            `json:"files_failed"`
	RecordsExtracted int64            `json:"records_extracted"`
	ExtractionErrors map[string]int64 `json:"extraction_errors,omitempty"`
}

func (FileProcessingExtraction) PipelineType() PipelineType { return PipelineFileProcessing }
func (FileProcessingExtraction) isExtraction()              {}

// FileExtractionRate returns processed/discovered files.
func (f FileProcessingExtraction) FileExtractionRate() float64 {
	return safeRate(f.FilesProcessed, f.FilesDiscovered)
}

// ExtractionEfficiency returns records extracted per processed file.
func (f FileProcessingExtraction) ExtractionEfficiency() float64 {
	return safeRate(f.RecordsExtracted, f.FilesProcessed)
}

func (f FileProcessingExtraction) DerivedRates() map[string]float64 {
	return map[string]float64{
		MetricFileExtractionSuccessRate: f.FileExtractionRate(),
		MetricExtractionEfficiency:      f.ExtractionEfficiency(),
	}
}

func (f FileProcessingExtraction) Validate() (bool, []string) {
	var warnings []string
	if f.FilesDiscovered < 0 || f.FilesProcessed < 0 || f.FilesFailed < 0 || f.RecordsExtracted < 0 {
		warnings = append(warnings, "file processing counters must not be negative")
	}
	if f.FilesProcessed > f.FilesDiscovered {
		warnings = append(warnings, fmt.Sprintf(
			"files_processed (%d) exceeds files_discovered (%d)", f.FilesProcessed, f.FilesDiscovered))
	}
	if f.FilesProcessed+f.FilesFailed > f.FilesDiscovered {
		warnings = append(warnings, fmt.Sprintf(
			"files_processed + files_failed (%d) exceeds files_discovered (%d)",
			f.FilesProcessed+f.FilesFailed, f.FilesDiscovered))
	}
	for reason, n := range f.ExtractionErrors {
		if n < 0 {
			warnings = append(warnings, fmt.Sprintf("extraction_errors[%s] is negative", reason))
		}
	}
	return len(warnings) == 0, warnings
}

// StreamProcessingExtraction is the extraction layer for streamed dataset sources.
// TotalRecordsAvailable is nil for genuinely unbounded streams; coverage is
// then omitted from derived rates rather than reported as NaN.
type StreamProcessingExtraction struct {
	StreamOpened          bool   `json:"stream_opened"`
	TotalRecordsAvailable *int64 `json:"total_records_available,omitempty"`
	BatchesAttempted      int64  `json:"batches_attempted"`
	BatchesCompleted      int64  `json:"batches_completed"`
	BatchesFailed         int64  `json:"batches_failed"`
	RecordsFetched        int64  `json:"records_fetched"`
}

func (StreamProcessingExtraction) PipelineType() PipelineType { return PipelineStreamProcessing }
func (StreamProcessingExtraction) isExtraction()              {}

// StreamReliability returns completed/attempted batches.
func (s StreamProcessingExtraction) StreamReliability() float64 {
	return safeRate(s.BatchesCompleted, s.BatchesAttempted)
}

// DatasetCoverageRate returns fetched/available records. The second return
// is false when the stream size is unknown.
func (s StreamProcessingExtraction) DatasetCoverageRate() (float64, bool) {
	if s.TotalRecordsAvailable == nil {
		return 0, false
	}
	return safeRate(s.RecordsFetched, *s.TotalRecordsAvailable), true
}

func (s StreamProcessingExtraction) DerivedRates() map[string]float64 {
	rates := map[string]float64{
		MetricStreamConnectionSuccessRate: s.StreamReliability(),
		MetricStreamCompletionRate:        s.StreamReliability(),
	}
	if coverage, known := s.DatasetCoverageRate(); known {
		rates[MetricDatasetCoverageRate] = coverage
	}
	return rates
}

func (s StreamProcessingExtraction) Validate() (bool, []string) {
	var warnings []string
	if s.BatchesAttempted < 0 || s.BatchesCompleted < 0 || s.BatchesFailed < 0 || s.RecordsFetched < 0 {
		warnings = append(warnings, "stream processing counters must not be negative")
	}
	if s.BatchesCompleted > s.BatchesAttempted {
		warnings = append(warnings, fmt.Sprintf(
			"batches_completed (%d) exceeds batches_attempted (%d)", s.BatchesCompleted, s.BatchesAttempted))
	}
	if !s.StreamOpened && s.BatchesAttempted > 0 {
		warnings = append(warnings, "batches attempted without stream_opened")
	}
	if s.TotalRecordsAvailable != nil && *s.TotalRecordsAvailable < 0 {
		warnings = append(warnings, "total_records_available is negative")
	}
	return len(warnings) == 0, warnings
}

// NewExtraction validates that payload is the correct variant for the declared
// pipeline type. A mismatch fails immediately; a malformed record is never produced.
func NewExtraction(pt PipelineType, payload ExtractionMetrics) (ExtractionMetrics, error) {
	if !pt.Valid() {
		return nil, errors.ValidationError("unknown pipeline type").
			WithContext("pipeline_type", string(pt)).Build()
	}
	if payload == nil {
		return nil, errors.ValidationError("extraction payload is required").
			WithContext("pipeline_type", string(pt)).Build()
	}
	if payload.PipelineType() != pt {
		return nil, errors.ValidationError(fmt.Sprintf(
			"extraction variant %s does not match declared pipeline type %s",
			payload.PipelineType(), pt)).Build()
	}
	return payload, nil
}

// UnmarshalExtraction decodes the extraction variant for pt from JSON.
// Unknown fields are rejected, so file-processing-shaped input can never
// silently become a web-scraping record with zeroed counters.
func UnmarshalExtraction(pt PipelineType, data []byte) (ExtractionMetrics, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	switch pt {
	case PipelineWebScraping:
		var w WebScrapingExtraction
		if err := dec.Decode(&w); err != nil {
			return nil, errors.WrapError(err, errors.CategoryValidation,
				"extraction fields do not belong to the web_scraping variant").Build()
		}
		return w, nil
	case PipelineFileProcessing:
		var f FileProcessingExtraction
		if err := dec.Decode(&f); err != nil {
			return nil, errors.WrapError(err, errors.CategoryValidation,
				"extraction fields do not belong to the file_processing variant").Build()
		}
		return f, nil
	case PipelineStreamProcessing:
		var s StreamProcessingExtraction
		if err := dec.Decode(&s); err != nil {
			return nil, errors.WrapError(err, errors.CategoryValidation,
				"extraction fields do not belong to the stream_processing variant").Build()
		}
		return s, nil
	default:
		return nil, errors.ValidationError("unknown pipeline type").
			WithContext("pipeline_type", string(pt)).Build()
	}
}
