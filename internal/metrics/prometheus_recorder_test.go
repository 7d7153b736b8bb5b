package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderMirrorsCollectorEvents(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	c := mustCollector(t, "bbc_somali", PipelineWebScraping)
	c.SetRecorder(rec)

	c.RecordConnectionAttempt(true, 100*time.Millisecond, "")
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(503)
	c.RecordFilterReason(FilterReasonDuplicate)
	c.RecordError("timeout")
	require.NoError(t, c.Increment(CounterBytesDownloaded, 4096))
	c.RecordWrittenRecord("Wararka maanta.")
	c.RecordWrittenRecord("Ciyaaraha caalamka.")

	require.InDelta(t, 2.0,
		testutil.ToFloat64(rec.httpStatus.WithLabelValues("bbc_somali", "200")), 0.001)
	require.InDelta(t, 1.0,
		testutil.ToFloat64(rec.httpStatus.WithLabelValues("bbc_somali", "503")), 0.001)
	require.InDelta(t, 1.0,
		testutil.ToFloat64(rec.filterReasons.WithLabelValues("bbc_somali", FilterReasonDuplicate)), 0.001)
	require.InDelta(t, 1.0,
		testutil.ToFloat64(rec.errorKinds.WithLabelValues("bbc_somali", "timeout")), 0.001)
	require.InDelta(t, 4096.0,
		testutil.ToFloat64(rec.bytesDownloaded.WithLabelValues("bbc_somali", "web_scraping")), 0.001)
	require.InDelta(t, 2.0,
		testutil.ToFloat64(rec.recordsWritten.WithLabelValues("bbc_somali", "web_scraping")), 0.001)

	// Connection durations land in the histogram.
	require.Equal(t, 1, testutil.CollectAndCount(rec.connDuration))
}

func TestPrometheusRecorderNilSafe(t *testing.T) {
	var rec *PrometheusRecorder
	rec.IncHTTPStatus("x", 200)
	rec.IncFilterReason("x", "dup")
	rec.IncErrorKind("x", "boom")
	rec.AddRecordsWritten("x", PipelineWebScraping, 1)
	rec.AddBytesDownloaded("x", PipelineWebScraping, 1)
	rec.ObserveConnectionDuration("x", time.Second, true)
}
