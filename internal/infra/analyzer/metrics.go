package analyzer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess  = "success"
	statusError    = "error"
	statusEmpty    = "empty"
	statusRejected = "rejected"
)

// MetricsRecorder records per-call analyzer metrics.
type MetricsRecorder interface {
	// RecordRequest records one logical call (retries included) and its outcome.
	RecordRequest(provider string, kind Kind, status string, duration time.Duration)

	// RecordResponseSize records the length of a successful JSON response in bytes.
	RecordResponseSize(provider string, kind Kind, bytes int)
}

// PrometheusMetrics implements MetricsRecorder with Prometheus collectors.
type PrometheusMetrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	responseSize *prometheus.HistogramVec
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		return promauto.NewHistogramVec(opts, labels)
	}
	return h
}

// NewPrometheusMetrics returns the process-wide recorder.
// シングルトンにしてテストでの二重登録を防ぐ
func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			requests: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "analyzer_requests_total",
				Help: "Total number of AI analysis calls by provider, kind and status",
			}, []string{"provider", "kind", "status"}),
			duration: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "analyzer_request_duration_seconds",
				Help:    "Time taken by an AI analysis call, retries included",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			}, []string{"provider", "kind"}),
			responseSize: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "analyzer_response_bytes",
				Help:    "Size of AI analysis JSON responses",
				Buckets: []float64{256, 512, 1024, 2048, 4096, 8192, 16384},
			}, []string{"provider", "kind"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordRequest implements MetricsRecorder.
func (p *PrometheusMetrics) RecordRequest(provider string, kind Kind, status string, duration time.Duration) {
	p.requests.WithLabelValues(provider, string(kind), status).Inc()
	p.duration.WithLabelValues(provider, string(kind)).Observe(duration.Seconds())
}

// RecordResponseSize implements MetricsRecorder.
func (p *PrometheusMetrics) RecordResponseSize(provider string, kind Kind, bytes int) {
	p.responseSize.WithLabelValues(provider, string(kind)).Observe(float64(bytes))
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordRequest(string, Kind, string, time.Duration) {}
func (NoOpMetrics) RecordResponseSize(string, Kind, int)              {}
