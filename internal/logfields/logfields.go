package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID        = "run_id"
	KeySource       = "source"
	KeyPipelineType = "pipeline_type"
	KeyMetric       = "metric"
	KeyPath         = "path"
	KeyDurationMS   = "duration_ms"
	KeyTotalVolume  = "total_volume"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Source(name string) slog.Attr     { return slog.String(KeySource, name) }
func PipelineType(pt string) slog.Attr { return slog.String(KeyPipelineType, pt) }
func Metric(name string) slog.Attr     { return slog.String(KeyMetric, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func TotalVolume(n int64) slog.Attr    { return slog.Int64(KeyTotalVolume, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
