package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Authorization outcomes.
const (
	outcomeAllowed      = "allowed"
	outcomeUnauthorized = "unauthorized"
	outcomeForbidden    = "forbidden"
)

var (
	tokenRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agrisense_auth_token_requests_total",
			Help: "POST /auth/token requests by issued role and failure reason",
		},
		[]string{"role", "reason"}, // reason is "ok" on success
	)

	tokenDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agrisense_auth_token_duration_seconds",
			Help:    "Time spent validating credentials and signing a token",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	authzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agrisense_authz_decisions_total",
			Help: "Authorization decisions by required access tier and outcome",
		},
		[]string{"access", "outcome"},
	)

	authzDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agrisense_authz_check_duration_seconds",
			Help:    "Time spent classifying the route and verifying the bearer token",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)
)

func recordToken(role, reason string, start time.Time) {
	tokenRequests.WithLabelValues(role, reason).Inc()
	tokenDuration.Observe(time.Since(start).Seconds())
}

func recordAuthz(access Access, outcome string, start time.Time) {
	authzDecisions.WithLabelValues(access.String(), outcome).Inc()
	authzDuration.Observe(time.Since(start).Seconds())
}
