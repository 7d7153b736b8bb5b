package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	httpStatus      *prom.CounterVec
	filterReasons   *prom.CounterVec
	errorKinds      *prom.CounterVec
	recordsWritten  *prom.CounterVec
	bytesDownloaded *prom.CounterVec
	connDuration    *prom.HistogramVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.httpStatus = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "corpusmetrics",
			Name:      "http_responses_total",
			Help:      "HTTP responses by source and status code",
		}, []string{"source", "status_code"})
		pr.filterReasons = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "corpusmetrics",
			Name:      "records_filtered_total",
			Help:      "Records rejected by quality filters, by reason",
		}, []string{"source", "reason"})
		pr.errorKinds = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "corpusmetrics",
			Name:      "errors_total",
			Help:      "Classified pipeline errors (diagnostic only, not used in rates)",
		}, []string{"source", "kind"})
		pr.recordsWritten = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "corpusmetrics",
			Name:      "records_written_total",
			Help:      "Records written to the corpus output",
		}, []string{"source", "pipeline_type"})
		pr.bytesDownloaded = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "corpusmetrics",
			Name:      "bytes_downloaded_total",
			Help:      "Raw bytes fetched from sources",
		}, []string{"source", "pipeline_type"})
		pr.connDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "corpusmetrics",
			Name:      "connection_duration_seconds",
			Help:      "Duration of initial source connections",
			Buckets:   prom.DefBuckets,
		}, []string{"source", "result"})
		reg.MustRegister(pr.httpStatus, pr.filterReasons, pr.errorKinds,
			pr.recordsWritten, pr.bytesDownloaded, pr.connDuration)
	})
	return pr
}

func (p *PrometheusRecorder) IncHTTPStatus(source string, status int) {
	if p == nil || p.httpStatus == nil {
		return
	}
	p.httpStatus.WithLabelValues(source, strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) IncFilterReason(source, reason string) {
	if p == nil || p.filterReasons == nil {
		return
	}
	p.filterReasons.WithLabelValues(source, reason).Inc()
}

func (p *PrometheusRecorder) IncErrorKind(source, kind string) {
	if p == nil || p.errorKinds == nil {
		return
	}
	p.errorKinds.WithLabelValues(source, kind).Inc()
}

func (p *PrometheusRecorder) AddRecordsWritten(source string, pt PipelineType, n int64) {
	if p == nil || p.recordsWritten == nil {
		return
	}
	p.recordsWritten.WithLabelValues(source, string(pt)).Add(float64(n))
}

func (p *PrometheusRecorder) AddBytesDownloaded(source string, pt PipelineType, n int64) {
	if p == nil || p.bytesDownloaded == nil {
		return
	}
	p.bytesDownloaded.WithLabelValues(source, string(pt)).Add(float64(n))
}

func (p *PrometheusRecorder) ObserveConnectionDuration(source string, d time.Duration, success bool) {
	if p == nil || p.connDuration == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	p.connDuration.WithLabelValues(source, result).Observe(d.Seconds())
}
