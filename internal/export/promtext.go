package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/soomaali-corpus/corpusmetrics/internal/foundation/errors"
	"github.com/soomaali-corpus/corpusmetrics/internal/metrics"
)

// PromTextExporter writes run metrics in the Prometheus text exposition
// format, one *.prom file per run, for file-based service discovery.
// Raw monotonic counts are annotated as counters, computed rates and
// point-in-time values as gauges. Distributions (HTTP status codes, filter
// reasons) are exported as one series per key rather than collapsed.
type PromTextExporter struct {
	Namespace string
}

// NewPromTextExporter creates an exporter with the given metric namespace
// ("corpusmetrics" when empty).
func NewPromTextExporter(namespace string) *PromTextExporter {
	if namespace == "" {
		namespace = "corpusmetrics"
	}
	return &PromTextExporter{Namespace: namespace}
}

// ExportFile writes the document's exposition to {run_id}.prom in dir.
func (e *PromTextExporter) ExportFile(dir string, doc Document) (string, error) {
	path := filepath.Join(dir, doc.RunID+".prom")
	var sb strings.Builder
	if err := e.Write(&sb, doc); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", errors.WrapError(err, errors.CategoryExport, "write prometheus exposition").
			WithContext("path", path).Build()
	}
	return path, nil
}

// Write emits the document's run metrics to w.
func (e *PromTextExporter) Write(w io.Writer, doc Document) error {
	if doc.LayeredMetrics == nil {
		return errors.ExportError("prometheus export requires layered metrics").
			WithContext("run_id", doc.RunID).Build()
	}
	lm := *doc.LayeredMetrics
	labels := baseLabels(lm)

	pw := &promWriter{w: w, namespace: e.Namespace}

	// Connectivity
	pw.gauge("connection_successful", "Whether the initial source connection succeeded (1) or not (0)",
		labels, boolValue(lm.Connectivity.ConnectionSuccessful))
	if lm.Connectivity.ConnectionAttempted {
		pw.gauge("connection_duration_ms", "Duration of the initial source connection in milliseconds",
			labels, lm.Connectivity.ConnectionDurationMS)
	}

	// Extraction (variant-specific)
	switch ext := lm.Extraction.(type) {
	case metrics.WebScrapingExtraction:
		pw.counter("http_requests_attempted_total", "HTTP requests issued", labels, float64(ext.HTTPRequestsAttempted))
		pw.counter("http_requests_successful_total", "HTTP requests answered 2xx", labels, float64(ext.HTTPRequestsSuccessful))
		pw.counter("pages_parsed_total", "HTML pages parsed", labels, float64(ext.PagesParsed))
		pw.counter("content_extracted_total", "Pages that yielded content", labels, float64(ext.ContentExtracted))
		pw.counterSeries("http_responses_total", "HTTP responses by status code", labels,
			"status_code", intKeyedSeries(ext.HTTPStatusDistribution))
	case metrics.FileProcessingExtraction:
		pw.counter("files_discovered_total", "Dump files discovered", labels, float64(ext.FilesDiscovered))
		pw.counter("files_processed_total", "Dump files fully processed", labels, float64(ext.FilesProcessed))
		pw.counter("files_failed_total", "Dump files that failed processing", labels, float64(ext.FilesFailed))
		pw.counter("records_extracted_total", "Records extracted from dump files", labels, float64(ext.RecordsExtracted))
		pw.counterSeries("extraction_errors_total", "Extraction failures by reason", labels,
			"reason", stringKeyedSeries(ext.ExtractionErrors))
	case metrics.StreamProcessingExtraction:
		pw.gauge("stream_opened", "Whether the dataset stream opened (1) or not (0)", labels, boolValue(ext.StreamOpened))
		pw.counter("batches_attempted_total", "Stream batches attempted", labels, float64(ext.BatchesAttempted))
		pw.counter("batches_completed_total", "Stream batches completed", labels, float64(ext.BatchesCompleted))
		pw.counter("batches_failed_total", "Stream batches failed", labels, float64(ext.BatchesFailed))
		pw.counter("records_fetched_total", "Records fetched from the stream", labels, float64(ext.RecordsFetched))
		if ext.TotalRecordsAvailable != nil {
			pw.gauge("total_records_available", "Declared total size of the upstream dataset", labels,
				float64(*ext.TotalRecordsAvailable))
		}
	}
	for _, rate := range sortedRateList(lm.Extraction) {
		pw.gauge(rate.name, "Derived extraction rate, comparable only within one pipeline type", labels, rate.value)
	}

	// Quality
	pw.counter("records_received_total", "Records received by the filter chain", labels, float64(lm.Quality.RecordsReceived))
	pw.counter("records_passed_filters_total", "Records that passed all filters", labels, float64(lm.Quality.RecordsPassedFilters))
	pw.counterSeries("records_filtered_total", "Records rejected by filters, by reason", labels,
		"reason", stringKeyedSeries(lm.Quality.FilterBreakdown))
	pw.gauge(metrics.MetricQualityPassRate, "Fraction of received records that passed all filters", labels,
		lm.Quality.QualityPassRate())
	pw.gauge(metrics.MetricDeduplicationRate, "Fraction of received records rejected as duplicates", labels,
		lm.Quality.DeduplicationRate())

	// Volume
	pw.counter("records_written_total", "Records written to the corpus output", labels, float64(lm.Volume.RecordsWritten))
	pw.counter("bytes_downloaded_total", "Raw bytes fetched from the source", labels, float64(lm.Volume.BytesDownloaded))
	pw.counter("chars_total", "NFC-normalized characters written", labels, float64(lm.Volume.TotalChars))
	pw.gauge("avg_record_size_bytes", "Average record size in bytes", labels, lm.Volume.AvgRecordSizeBytes())
	pw.gauge("avg_record_length_chars", "Average record length in characters", labels, lm.Volume.AvgRecordLengthChars())

	return pw.err
}

type labelSet struct {
	keys   []string
	values []string
}

func baseLabels(lm metrics.LayeredMetrics) labelSet {
	return labelSet{
		keys:   []string{"source", "pipeline_type", "run_id"},
		values: []string{lm.Source, string(lm.PipelineType), lm.RunID},
	}
}

func (l labelSet) with(key, value string) labelSet {
	return labelSet{
		keys:   append(append([]string(nil), l.keys...), key),
		values: append(append([]string(nil), l.values...), value),
	}
}

func (l labelSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, key := range l.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(key)
		sb.WriteString(`="`)
		sb.WriteString(escapeLabel(l.values[i]))
		sb.WriteByte('"')
	}
	sb.WriteByte('}')
	return sb.String()
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, "\n", `\n`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return v
}

// promWriter accumulates the first write error instead of forcing err checks
// on every line.
type promWriter struct {
	w         io.Writer
	namespace string
	err       error
}

func (pw *promWriter) header(name, help, typ string) {
	pw.printf("# HELP %s_%s %s\n", pw.namespace, name, help)
	pw.printf("# TYPE %s_%s %s\n", pw.namespace, name, typ)
}

func (pw *promWriter) counter(name, help string, labels labelSet, value float64) {
	pw.header(name, help, "counter")
	pw.printf("%s_%s%s %s\n", pw.namespace, name, labels, formatValue(value))
}

func (pw *promWriter) gauge(name, help string, labels labelSet, value float64) {
	pw.header(name, help, "gauge")
	pw.printf("%s_%s%s %s\n", pw.namespace, name, labels, formatValue(value))
}

type seriesPoint struct {
	label string
	value float64
}

func (pw *promWriter) counterSeries(name, help string, labels labelSet, labelKey string, points []seriesPoint) {
	if len(points) == 0 {
		return
	}
	pw.header(name, help, "counter")
	for _, p := range points {
		pw.printf("%s_%s%s %s\n", pw.namespace, name, labels.with(labelKey, p.label), formatValue(p.value))
	}
}

func (pw *promWriter) printf(format string, args ...any) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, format, args...)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func intKeyedSeries(m map[int]int64) []seriesPoint {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	points := make([]seriesPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, seriesPoint{label: strconv.Itoa(k), value: float64(m[k])})
	}
	return points
}

func stringKeyedSeries(m map[string]int64) []seriesPoint {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	points := make([]seriesPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, seriesPoint{label: k, value: float64(m[k])})
	}
	return points
}

type namedRate struct {
	name  string
	value float64
}

func sortedRateList(ext metrics.ExtractionMetrics) []namedRate {
	if ext == nil {
		return nil
	}
	rates := ext.DerivedRates()
	names := make([]string, 0, len(rates))
	for name := range rates {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]namedRate, 0, len(names))
	for _, name := range names {
		out = append(out, namedRate{name: name, value: rates[name]})
	}
	return out
}
