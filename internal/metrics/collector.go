package metrics

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soomaali-corpus/corpusmetrics/internal/foundation/errors"
	"github.com/soomaali-corpus/corpusmetrics/internal/textstat"
)

// Counter names the pipelines bump through Collector.Increment. The Collector
// accepts arbitrary names; these are the ones the layered view is built from.
const (
	CounterPagesParsed      = "pages_parsed"
	CounterContentExtracted = "content_extracted"

	CounterFilesDiscovered  = "files_discovered"
	CounterFilesProcessed   = "files_processed"
	CounterFilesFailed      = "files_failed"
	CounterRecordsExtracted = "records_extracted"

	CounterBatchesAttempted = "batches_attempted"
	CounterBatchesCompleted = "batches_completed"
	CounterBatchesFailed    = "batches_failed"
	CounterRecordsFetched   = "records_fetched"

	CounterRecordsReceived      = "records_received"
	CounterRecordsPassedFilters = "records_passed_filters"
	CounterRecordsFiltered      = "records_filtered"

	CounterRecordsWritten  = "records_written"
	CounterBytesDownloaded = "bytes_downloaded"
	CounterTotalChars      = "total_chars"
)

// Collector accumulates raw counters during a single pipeline run. One
// Collector is owned by exactly one run; the mutex only guards against the
// occasional helper goroutine a scraper spawns, not cross-run sharing.
//
// Two read views exist: Snapshot() returns the legacy flat statistics older
// consumers parse, Layered() returns the four-layer structured records.
// Both are pure reads; calling them twice without intervening writes returns
// identical results.
type Collector struct {
	mu sync.Mutex

	runID        string
	source       string
	pipelineType PipelineType
	startTime    time.Time

	counters      map[string]int64
	httpStatus    map[int]int64
	httpAttempted int64
	httpSucceeded int64
	filterReasons map[string]int64
	errorKinds    map[string]int64

	connAttempted  bool
	connSuccessful bool
	connDuration   time.Duration
	connError      string

	streamOpened bool
	streamTotal  *int64

	recorder Recorder
}

// NewCollector creates a Collector for one run of the named source.
// Unknown pipeline types are rejected here, the same way NewExtraction
// rejects them, so a collector can always build its extraction layer.
func NewCollector(source string, pt PipelineType) (*Collector, error) {
	if !pt.Valid() {
		return nil, errors.ValidationError(fmt.Sprintf("unknown pipeline type: %q", pt)).
			WithContext("source", source).
			WithContext("pipeline_type", string(pt)).
			Build()
	}
	return &Collector{
		runID:         uuid.NewString(),
		source:        source,
		pipelineType:  pt,
		startTime:     time.Now(),
		counters:      make(map[string]int64),
		httpStatus:    make(map[int]int64),
		filterReasons: make(map[string]int64),
		errorKinds:    make(map[string]int64),
		recorder:      NoopRecorder{},
	}, nil
}

// SetRecorder injects a live metrics recorder mirroring write events.
func (c *Collector) SetRecorder(r Recorder) {
	if r == nil {
		r = NoopRecorder{}
	}
	c.mu.Lock()
	c.recorder = r
	c.mu.Unlock()
}

// RunID returns the run identifier assigned at construction.
func (c *Collector) RunID() string { return c.runID }

// Source returns the source name this run collects for.
func (c *Collector) Source() string { return c.source }

// PipelineType returns the declared pipeline type.
func (c *Collector) PipelineType() PipelineType { return c.pipelineType }

// Increment bumps a named counter. Negative amounts are a contract violation
// and are rejected, never silently clamped.
func (c *Collector) Increment(name string, amount int64) error {
	if amount < 0 {
		return errors.ValidationError("counter increment must not be negative").
			WithContext("counter", name).
			WithContext("amount", amount).Build()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += amount

	switch name {
	case CounterRecordsWritten:
		c.recorder.AddRecordsWritten(c.source, c.pipelineType, amount)
	case CounterBytesDownloaded:
		c.recorder.AddBytesDownloaded(c.source, c.pipelineType, amount)
	}
	return nil
}

// RecordHTTPStatus records one completed HTTP request. 2xx responses count as
// successful. The attempted counter tracks requests actually issued, not URLs
// discovered; success rates are scoped to it.
func (c *Collector) RecordHTTPStatus(status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpStatus[status]++
	c.httpAttempted++
	if status >= 200 && status < 300 {
		c.httpSucceeded++
	}
	c.recorder.IncHTTPStatus(c.source, status)
}

// RecordFilterReason records one record rejected by the named filter.
func (c *Collector) RecordFilterReason(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filterReasons[name]++
	c.counters[CounterRecordsFiltered]++
	c.recorder.IncFilterReason(c.source, name)
}

// RecordError records a classified error occurrence. Error counts are kept
// for diagnostics only and never enter rate computations.
func (c *Collector) RecordError(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorKinds[kind]++
	c.recorder.IncErrorKind(c.source, kind)
}

// RecordConnectionAttempt records the run's initial connection to its source.
func (c *Collector) RecordConnectionAttempt(success bool, duration time.Duration, errMsg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connAttempted = true
	c.connSuccessful = success
	c.connDuration = duration
	c.connError = errMsg
	c.recorder.ObserveConnectionDuration(c.source, duration, success)
}

// SetStreamOpened marks the stream as opened (stream pipelines only).
func (c *Collector) SetStreamOpened(opened bool) {
	c.mu.Lock()
	c.streamOpened = opened
	c.mu.Unlock()
}

// SetTotalRecordsAvailable declares the stream's total size when known.
// Unbounded streams never call this; coverage is then omitted from exports.
func (c *Collector) SetTotalRecordsAvailable(n int64) {
	c.mu.Lock()
	c.streamTotal = &n
	c.mu.Unlock()
}

// RecordWrittenRecord accounts one record written to the corpus, including
// its NFC-normalized character count.
func (c *Collector) RecordWrittenRecord(text string) {
	_, chars := textstat.Count(text)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[CounterRecordsWritten]++
	c.counters[CounterTotalChars] += chars
	c.recorder.AddRecordsWritten(c.source, c.pipelineType, 1)
}

// Layered builds the four structured records from the accumulated counters.
func (c *Collector) Layered() LayeredMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	lm := LayeredMetrics{
		RunID:        c.runID,
		Source:       c.source,
		PipelineType: c.pipelineType,
		Connectivity: ConnectivityMetrics{
			ConnectionAttempted:  c.connAttempted,
			ConnectionSuccessful: c.connSuccessful,
			ConnectionDurationMS: float64(c.connDuration) / float64(time.Millisecond),
			ConnectionError:      c.connError,
		},
		Quality: QualityMetrics{
			RecordsReceived:      c.counters[CounterRecordsReceived],
			RecordsPassedFilters: c.counters[CounterRecordsPassedFilters],
			FilterBreakdown:      cloneMap(c.filterReasons),
		},
		Volume: VolumeMetrics{
			RecordsWritten:  c.counters[CounterRecordsWritten],
			BytesDownloaded: c.counters[CounterBytesDownloaded],
			TotalChars:      c.counters[CounterTotalChars],
		},
	}

	switch c.pipelineType {
	case PipelineWebScraping:
		lm.Extraction = WebScrapingExtraction{
			HTTPRequestsAttempted:  c.httpAttempted,
			HTTPRequestsSuccessful: c.httpSucceeded,
			HTTPStatusDistribution: cloneMap(c.httpStatus),
			PagesParsed:            c.counters[CounterPagesParsed],
			ContentExtracted:       c.counters[CounterContentExtracted],
		}
	case PipelineFileProcessing:
		lm.Extraction = FileProcessingExtraction{
			FilesDiscovered:  c.counters[CounterFilesDiscovered],
			FilesProcessed:   c.counters[CounterFilesProcessed],
			FilesFailed:      c.counters[CounterFilesFailed],
			RecordsExtracted: c.counters[CounterRecordsExtracted],
			ExtractionErrors: cloneMap(c.errorKinds),
		}
	case PipelineStreamProcessing:
		var total *int64
		if c.streamTotal != nil {
			v := *c.streamTotal
			total = &v
		}
		lm.Extraction = StreamProcessingExtraction{
			StreamOpened:          c.streamOpened,
			TotalRecordsAvailable: total,
			BatchesAttempted:      c.counters[CounterBatchesAttempted],
			BatchesCompleted:      c.counters[CounterBatchesCompleted],
			BatchesFailed:         c.counters[CounterBatchesFailed],
			RecordsFetched:        c.counters[CounterRecordsFetched],
		}
	}

	return lm
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if len(m) == 0 {
		return nil
	}
	out := make(map[K]V, len(m))
	maps.Copy(out, m)
	return out
}
