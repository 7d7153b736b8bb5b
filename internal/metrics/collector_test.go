package metrics

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soomaali-corpus/corpusmetrics/internal/foundation/errors"
)

func mustCollector(t *testing.T, source string, pt PipelineType) *Collector {
	t.Helper()
	c, err := NewCollector(source, pt)
	require.NoError(t, err)
	return c
}

func TestNewCollectorRejectsUnknownPipelineType(t *testing.T) {
	c, err := NewCollector("mystery", PipelineType("bulk_upload"))
	require.Nil(t, c)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.Contains(t, err.Error(), "bulk_upload")
}

func TestCollectorIncrementRejectsNegative(t *testing.T) {
	c := mustCollector(t, "wikipedia_so", PipelineFileProcessing)

	require.NoError(t, c.Increment(CounterFilesDiscovered, 3))
	err := c.Increment(CounterFilesDiscovered, -1)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))

	// The rejected amount must not have been applied.
	lm := c.Layered()
	fp := lm.Extraction.(FileProcessingExtraction)
	require.Equal(t, int64(3), fp.FilesDiscovered)
}

func TestCollectorHTTPStatusScoping(t *testing.T) {
	// Regression for the test-limit bug: 187 URLs were discovered but only 20
	// requests issued. The success rate is scoped to requests attempted
	// (18/20 = 90%), never to the discovered count (18/187 would be ~9.6%).
	c := mustCollector(t, "bbc_somali", PipelineWebScraping)
	require.NoError(t, c.Increment("urls_discovered", 187))

	for range 18 {
		c.RecordHTTPStatus(200)
	}
	c.RecordHTTPStatus(404)
	c.RecordHTTPStatus(500)

	ws := c.Layered().Extraction.(WebScrapingExtraction)
	require.Equal(t, int64(20), ws.HTTPRequestsAttempted)
	require.Equal(t, int64(18), ws.HTTPRequestsSuccessful)
	require.InDelta(t, 0.9, ws.HTTPSuccessRate(), 1e-9)
	require.Equal(t, int64(18), ws.HTTPStatusDistribution[200])
	require.Equal(t, int64(1), ws.HTTPStatusDistribution[404])
}

func TestCollectorFilterAndErrorCounters(t *testing.T) {
	c := mustCollector(t, "hf_somali", PipelineStreamProcessing)
	c.RecordFilterReason("too_short")
	c.RecordFilterReason("too_short")
	c.RecordFilterReason(FilterReasonDuplicate)
	c.RecordError("decode_error")

	lm := c.Layered()
	require.Equal(t, int64(2), lm.Quality.FilterBreakdown["too_short"])
	require.Equal(t, int64(1), lm.Quality.FilterBreakdown[FilterReasonDuplicate])

	snap := c.Snapshot()
	require.Equal(t, int64(3), snap.Statistics[CounterRecordsFiltered])
	errs := snap.Statistics["errors"].(map[string]int64)
	require.Equal(t, int64(1), errs["decode_error"])
}

func TestCollectorLayeredStream(t *testing.T) {
	c := mustCollector(t, "hf_somali", PipelineStreamProcessing)
	c.RecordConnectionAttempt(true, 80*time.Millisecond, "")
	c.SetStreamOpened(true)
	c.SetTotalRecordsAvailable(10000)
	require.NoError(t, c.Increment(CounterBatchesAttempted, 5))
	require.NoError(t, c.Increment(CounterBatchesCompleted, 5))
	require.NoError(t, c.Increment(CounterRecordsFetched, 5000))
	require.NoError(t, c.Increment(CounterRecordsReceived, 5000))
	require.NoError(t, c.Increment(CounterRecordsPassedFilters, 4800))
	require.NoError(t, c.Increment(CounterBytesDownloaded, 2<<20))
	c.RecordWrittenRecord("Soomaaliya waa dal ku yaal Geeska Afrika.")

	lm := c.Layered()
	require.True(t, lm.Connectivity.ConnectionSuccessful)
	require.InDelta(t, 80, lm.Connectivity.ConnectionDurationMS, 1e-9)

	sp := lm.Extraction.(StreamProcessingExtraction)
	require.True(t, sp.StreamOpened)
	require.NotNil(t, sp.TotalRecordsAvailable)
	coverage, known := sp.DatasetCoverageRate()
	require.True(t, known)
	require.InDelta(t, 0.5, coverage, 1e-9)

	require.Equal(t, int64(1), lm.Volume.RecordsWritten)
	require.Equal(t, int64(41), lm.Volume.TotalChars)
	require.Empty(t, ValidateLayered(lm))
}

func TestCollectorViewsAreIdempotent(t *testing.T) {
	c := mustCollector(t, "wikipedia_so", PipelineFileProcessing)
	require.NoError(t, c.Increment(CounterFilesDiscovered, 12))
	require.NoError(t, c.Increment(CounterFilesProcessed, 11))
	require.NoError(t, c.Increment(CounterRecordsExtracted, 3000))
	require.NoError(t, c.Increment(CounterRecordsReceived, 3000))
	require.NoError(t, c.Increment(CounterRecordsPassedFilters, 2900))
	c.RecordFilterReason(FilterReasonDuplicate)

	first := c.Snapshot()
	second := c.Snapshot()
	require.True(t, reflect.DeepEqual(first, second), "Snapshot must be stable without intervening writes")

	lmFirst := c.Layered()
	lmSecond := c.Layered()
	require.Equal(t, lmFirst, lmSecond)
}

func TestCollectorSnapshotDeprecations(t *testing.T) {
	c := mustCollector(t, "bbc_somali", PipelineWebScraping)
	c.RecordHTTPStatus(200)

	snap := c.Snapshot()
	require.Contains(t, snap.Semantics, "fetch_success_rate")
	require.NotEmpty(t, snap.DeprecationWarnings)
	require.Contains(t, snap.DeprecationWarnings[0], MetricHTTPRequestSuccessRate)
	require.InDelta(t, 1.0, snap.Statistics["fetch_success_rate"].(float64), 1e-9)
	require.InDelta(t, 1.0, snap.Statistics[MetricHTTPRequestSuccessRate].(float64), 1e-9)
}
