// Package metrics holds the process-wide Prometheus collectors of the API
// and worker: HTTP traffic, catalog and checkout activity, sensor readings
// and the database pool. Everything registers with the default registry and
// is served on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agrisense"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, normalized path and status",
	}, []string{"method", "path", "status"})

	httpRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// Multipart image uploads dominate the request side.
	httpBodyBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_body_bytes",
		Help:      "Request and response body sizes",
		Buckets:   prometheus.ExponentialBuckets(128, 8, 8),
	}, []string{"direction"})

	InFlightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_in_flight_requests",
		Help:      "Requests currently being served",
	})
)

// RecordHTTPRequest records one finished request. Zero sizes are skipped.
func RecordHTTPRequest(method, path, status string, took time.Duration, reqBytes, respBytes int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestSeconds.WithLabelValues(method, path).Observe(took.Seconds())
	if reqBytes > 0 {
		httpBodyBytes.WithLabelValues("request").Observe(float64(reqBytes))
	}
	if respBytes > 0 {
		httpBodyBytes.WithLabelValues("response").Observe(float64(respBytes))
	}
}
