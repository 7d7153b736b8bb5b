package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soomaali-corpus/corpusmetrics/internal/metrics"
)

func finalizedCollector(t *testing.T) *metrics.Collector {
	t.Helper()
	c, err := metrics.NewCollector("bbc_somali", metrics.PipelineWebScraping)
	require.NoError(t, err)
	c.RecordConnectionAttempt(true, 150*time.Millisecond, "")
	for range 18 {
		c.RecordHTTPStatus(200)
	}
	c.RecordHTTPStatus(404)
	c.RecordHTTPStatus(503)
	require.NoError(t, c.Increment(metrics.CounterPagesParsed, 18))
	require.NoError(t, c.Increment(metrics.CounterContentExtracted, 17))
	require.NoError(t, c.Increment(metrics.CounterRecordsReceived, 17))
	require.NoError(t, c.Increment(metrics.CounterRecordsPassedFilters, 15))
	c.RecordFilterReason("too_short")
	c.RecordFilterReason(metrics.FilterReasonDuplicate)
	require.NoError(t, c.Increment(metrics.CounterBytesDownloaded, 90000))
	for range 15 {
		c.RecordWrittenRecord("Wararka maanta ee Soomaaliya iyo caalamka.")
	}
	return c
}

func TestJSONExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	exporter := NewJSONExporter(dir, true)
	c := finalizedCollector(t)

	path, err := exporter.Export(c)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, c.RunID()+"_processing.json"), path)

	doc, err := ReadDocument(path)
	require.NoError(t, err)
	require.Equal(t, SchemaVersionLayered, doc.SchemaVersion)
	require.Equal(t, metrics.PipelineWebScraping, doc.PipelineType)
	require.Equal(t, c.RunID(), doc.RunID)
	require.NotNil(t, doc.LayeredMetrics)

	// The reconstructed records must validate identically to the originals.
	original := c.Layered()
	require.Equal(t, metrics.ValidateLayered(original), metrics.ValidateLayered(*doc.LayeredMetrics))

	ws, ok := doc.LayeredMetrics.Extraction.(metrics.WebScrapingExtraction)
	require.True(t, ok)
	require.Equal(t, int64(20), ws.HTTPRequestsAttempted)
	require.Equal(t, int64(18), ws.HTTPStatusDistribution[200])

	// Legacy section stays present for old consumers.
	require.NotEmpty(t, doc.LegacyMetrics.Statistics)
	require.NotEmpty(t, doc.LegacyMetrics.DeprecationWarnings)
}

func TestJSONExportLegacyOnly(t *testing.T) {
	dir := t.TempDir()
	exporter := NewJSONExporter(dir, false)
	c := finalizedCollector(t)

	path, err := exporter.Export(c)
	require.NoError(t, err)

	doc, err := ReadDocument(path)
	require.NoError(t, err)
	require.Nil(t, doc.LayeredMetrics, "layered section must be omitted when disabled")
	require.NotEmpty(t, doc.LegacyMetrics.Statistics)

	// Without a layered section the document must not claim the layered schema.
	require.Equal(t, SchemaVersionSemantic, doc.SchemaVersion)
}

func TestValidationWarningsEmbedded(t *testing.T) {
	c, err := metrics.NewCollector("wikipedia_so", metrics.PipelineFileProcessing)
	require.NoError(t, err)
	// records_written exceeding records_passed_filters is a cross-layer
	// violation that must surface as an embedded warning, not an error.
	require.NoError(t, c.Increment(metrics.CounterRecordsReceived, 100))
	require.NoError(t, c.Increment(metrics.CounterRecordsPassedFilters, 50))
	require.NoError(t, c.Increment(metrics.CounterRecordsWritten, 100))
	require.NoError(t, c.Increment(metrics.CounterRecordsExtracted, 100))
	require.NoError(t, c.Increment(metrics.CounterFilesDiscovered, 1))
	require.NoError(t, c.Increment(metrics.CounterFilesProcessed, 1))
	c.RecordConnectionAttempt(true, time.Millisecond, "")

	doc := NewJSONExporter(t.TempDir(), true).BuildDocument(c)
	require.NotEmpty(t, doc.ValidationWarnings)
	joined := strings.Join(doc.ValidationWarnings, "\n")
	require.Contains(t, joined, "records_written")
}

func TestParseLegacySchemaVersions(t *testing.T) {
	legacy := `{
		"_schema_version": "2.0",
		"_pipeline_type": "web_scraping",
		"_run_id": "run-old",
		"_source": "bbc_somali",
		"legacy_metrics": {
			"statistics": {
				"fetch_success_rate": 0.9,
				"records_written": 120
			}
		}
	}`
	doc, err := ParseDocument([]byte(legacy))
	require.NoError(t, err)
	require.Nil(t, doc.LayeredMetrics)

	// Legacy names are normalized onto the canonical vocabulary, additively.
	require.Equal(t, 0.9, doc.LegacyMetrics.Statistics[metrics.MetricHTTPRequestSuccessRate])
	require.Equal(t, 0.9, doc.LegacyMetrics.Statistics["fetch_success_rate"])

	_, err = ParseDocument([]byte(`{"_schema_version": "9.9"}`))
	require.Error(t, err)

	_, err = ParseDocument([]byte(`{}`))
	require.Error(t, err)
}

func TestCompatContextIsPure(t *testing.T) {
	ctx := DefaultCompatContext()
	require.Equal(t, metrics.MetricFileExtractionSuccessRate,
		ctx.Replacement("fetch_success_rate", metrics.PipelineFileProcessing))
	require.Empty(t, ctx.Replacement("fetch_success_rate", metrics.PipelineType("unknown")))
	require.Empty(t, ctx.Replacement("no_such_metric", metrics.PipelineWebScraping))
}

func TestPromTextExport(t *testing.T) {
	dir := t.TempDir()
	c := finalizedCollector(t)
	doc := NewJSONExporter(dir, true).BuildDocument(c)

	path, err := NewPromTextExporter("").ExportFile(dir, doc)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(data)

	// Counters and gauges carry type annotations.
	require.Contains(t, body, "# TYPE corpusmetrics_records_written_total counter")
	require.Contains(t, body, "# TYPE corpusmetrics_quality_pass_rate gauge")

	// Standard labels on every series.
	require.Contains(t, body, `source="bbc_somali"`)
	require.Contains(t, body, `pipeline_type="web_scraping"`)
	require.Contains(t, body, `run_id="`+c.RunID()+`"`)

	// Distributions explode into one series per key.
	require.Contains(t, body, `corpusmetrics_http_responses_total{source="bbc_somali",pipeline_type="web_scraping",run_id="`+c.RunID()+`",status_code="200"} 18`)
	require.Contains(t, body, `status_code="404"`)
	require.Contains(t, body, `reason="too_short"`)
	require.Contains(t, body, `reason="duplicate"`)

	// Derived rates are gauges with scoped names, not a generic success rate.
	require.Contains(t, body, "corpusmetrics_http_request_success_rate")
	require.NotContains(t, body, "corpusmetrics_fetch_success_rate")
}

func TestPromTextRequiresLayered(t *testing.T) {
	doc := Document{SchemaVersion: SchemaVersionSemantic, RunID: "run-old"}
	err := NewPromTextExporter("").Write(&strings.Builder{}, doc)
	require.Error(t, err)
}
