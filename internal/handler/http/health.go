// Package http holds the cross-cutting HTTP pieces of the API server:
// health endpoints, request logging, panic recovery, body limits and
// request metrics. Resource handlers live in the sub packages.
package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"` // healthy, degraded or unhealthy
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Pinger is a dependency that can report its reachability, such as the
// Redis cart store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports database connectivity and pool statistics, plus any
// optional dependencies. Only the database decides the overall status; an
// unreachable optional dependency is reported as degraded.
type HealthHandler struct {
	DB       *sql.DB
	Version  string
	Optional map[string]Pinger

	// Analyzer is the configured analysis provider name, reported for operators.
	Analyzer string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus, 2+len(h.Optional))
	healthy := true

	if h.DB != nil {
		checks["database"] = h.checkDatabase(ctx)
		if checks["database"].Status == "unhealthy" {
			healthy = false
		}
	} else {
		checks["database"] = CheckStatus{Status: "unhealthy", Message: "not configured"}
		healthy = false
	}

	for name, p := range h.Optional {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "health: dependency unreachable",
				slog.String("dependency", name),
				slog.Any("error", err))
			checks[name] = CheckStatus{Status: "degraded", Message: "unreachable"}
			continue
		}
		checks[name] = CheckStatus{Status: "healthy"}
	}

	if h.Analyzer != "" {
		st := CheckStatus{Status: "healthy", Details: map[string]any{"provider": h.Analyzer}}
		if h.Analyzer == "noop" {
			st.Status = "degraded"
			st.Message = "no analyzer API key configured"
		}
		checks["analyzer"] = st
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}); err != nil {
		slog.Error("health: failed to encode response", slog.Any("error", err))
	}
}

// checkDatabase pings the database and reports pool statistics.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		slog.WarnContext(ctx, "health: database ping failed", slog.Any("error", err))
		return CheckStatus{Status: "unhealthy", Message: "database unreachable"}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	// MaxOpenConnections が 0 (無制限) のときは使用率を出せない
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{
			Status:  "degraded",
			Message: "connection pool max connections not configured",
			Details: details,
		}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80.0 {
		return CheckStatus{
			Status:  "degraded",
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

// ReadyHandler is the readiness probe: 200 once the database answers.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler is the liveness probe and always answers 200.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}

// RegisterOps mounts /health, /ready, /live and /metrics.
func RegisterOps(mux *http.ServeMux, health *HealthHandler) {
	mux.Handle("GET /health", health)
	mux.Handle("GET /ready", &ReadyHandler{DB: health.DB})
	mux.Handle("GET /live", LiveHandler{})
	mux.Handle("GET /metrics", MetricsHandler())
}
