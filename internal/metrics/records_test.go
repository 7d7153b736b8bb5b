package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectivityValidate(t *testing.T) {
	tests := []struct {
		name  string
		conn  ConnectivityMetrics
		valid bool
	}{
		{"zero value", ConnectivityMetrics{}, true},
		{"normal success", ConnectivityMetrics{ConnectionAttempted: true, ConnectionSuccessful: true, ConnectionDurationMS: 120}, true},
		{"success without attempt", ConnectivityMetrics{ConnectionSuccessful: true}, false},
		{"duration without attempt", ConnectivityMetrics{ConnectionDurationMS: 55}, false},
		{"negative duration", ConnectivityMetrics{ConnectionAttempted: true, ConnectionDurationMS: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, warnings := tt.conn.Validate()
			require.Equal(t, tt.valid, ok, "warnings: %v", warnings)
		})
	}
}

func TestQualityValidate(t *testing.T) {
	t.Run("passed exceeds received", func(t *testing.T) {
		q := QualityMetrics{RecordsReceived: 10, RecordsPassedFilters: 20}
		ok, warnings := q.Validate()
		require.False(t, ok)
		require.NotEmpty(t, warnings)
	})

	t.Run("breakdown exceeds filtered", func(t *testing.T) {
		q := QualityMetrics{
			RecordsReceived:      100,
			RecordsPassedFilters: 90,
			FilterBreakdown:      map[string]int64{"too_short": 8, "duplicate": 5},
		}
		ok, _ := q.Validate()
		require.False(t, ok)
	})

	t.Run("breakdown within filtered", func(t *testing.T) {
		q := QualityMetrics{
			RecordsReceived:      100,
			RecordsPassedFilters: 90,
			FilterBreakdown:      map[string]int64{"too_short": 6, "duplicate": 4},
		}
		ok, warnings := q.Validate()
		require.True(t, ok, "warnings: %v", warnings)
		require.InDelta(t, 0.9, q.QualityPassRate(), 1e-9)
		require.InDelta(t, 0.04, q.DeduplicationRate(), 1e-9)
		require.Equal(t, int64(10), q.TotalFiltered())
	})
}

func TestVolumeDerivedGuards(t *testing.T) {
	var v VolumeMetrics
	require.Zero(t, v.AvgRecordSizeBytes())
	require.Zero(t, v.AvgRecordLengthChars())

	v = VolumeMetrics{RecordsWritten: 4, BytesDownloaded: 400, TotalChars: 100}
	require.InDelta(t, 100, v.AvgRecordSizeBytes(), 1e-9)
	require.InDelta(t, 25, v.AvgRecordLengthChars(), 1e-9)
}
