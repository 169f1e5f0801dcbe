package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agrisense/internal/handler/http/pathutil"
	"agrisense/internal/handler/http/responsewriter"
	"agrisense/internal/observability/metrics"
)

// MetricsMiddleware records request count, latency and sizes. Paths are
// normalized so IDs and cart tokens do not become label values.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.InFlightRequests.Inc()
		defer metrics.InFlightRequests.Dec()

		wrapped := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(wrapped, r)

		metrics.RecordHTTPRequest(
			r.Method,
			pathutil.NormalizePath(r.URL.Path),
			strconv.Itoa(wrapped.StatusCode()),
			time.Since(start),
			int(max(r.ContentLength, 0)),
			wrapped.BytesWritten(),
		)
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
