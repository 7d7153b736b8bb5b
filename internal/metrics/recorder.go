package metrics

import "time"

// Recorder defines live observability hooks mirroring Collector write events.
// The Collector remains the source of truth for run snapshots; a Recorder
// only feeds a scrape endpoint while a run is in flight. All methods must be
// safe on the zero value so injection stays optional.
type Recorder interface {
	IncHTTPStatus(source string, status int)
	IncFilterReason(source, reason string)
	IncErrorKind(source, kind string)
	AddRecordsWritten(source string, pt PipelineType, n int64)
	AddBytesDownloaded(source string, pt PipelineType, n int64)
	ObserveConnectionDuration(source string, d time.Duration, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when live metrics are
// not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncHTTPStatus(string, int)                            {}
func (NoopRecorder) IncFilterReason(string, string)                       {}
func (NoopRecorder) IncErrorKind(string, string)                          {}
func (NoopRecorder) AddRecordsWritten(string, PipelineType, int64)        {}
func (NoopRecorder) AddBytesDownloaded(string, PipelineType, int64)       {}
func (NoopRecorder) ObserveConnectionDuration(string, time.Duration, bool) {}
