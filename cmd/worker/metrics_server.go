package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"agrisense/internal/usecase/notify"
	envcfg "agrisense/pkg/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultMetricsPort = 9090

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ChannelHealthResponse represents the health status of all notification channels.
type ChannelHealthResponse struct {
	Healthy  bool            `json:"healthy"`
	Channels []ChannelStatus `json:"channels"`
}

// ChannelStatus represents the status of a single notification channel.
type ChannelStatus struct {
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	CircuitBreakerOpen bool   `json:"circuit_breaker_open"`
}

// startMetricsServer serves Prometheus metrics and channel health on
// METRICS_PORT (default 9090) until ctx is cancelled.
//
// Endpoints:
//   - GET /metrics
//   - GET /health - always 200
//   - GET /health/channels - 503 when an enabled channel's breaker is open
func startMetricsServer(ctx context.Context, logger *slog.Logger, notifyService notify.Service) *http.Server {
	port := getMetricsPort()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      newMetricsMux(notifyService),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
			return
		}
		logger.Info("metrics server stopped")
	}()

	return server
}

func newMetricsMux(notifyService notify.Service) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", healthHandler)
	if notifyService != nil {
		mux.HandleFunc("GET /health/channels", channelHealthHandler(notifyService))
	} else {
		mux.HandleFunc("GET /health/channels", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "notification service not initialized",
			})
		})
	}
	return mux
}

// getMetricsPort falls back to 9090 on a missing or out-of-range value.
func getMetricsPort() int {
	port := envcfg.GetEnvInt("METRICS_PORT", defaultMetricsPort)
	if port <= 0 || port > 65535 {
		return defaultMetricsPort
	}
	return port
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func channelHealthHandler(notifyService notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		statuses := notifyService.GetChannelHealth()

		channels := make([]ChannelStatus, 0, len(statuses))
		healthy := true
		for _, st := range statuses {
			channels = append(channels, ChannelStatus{
				Name:               st.Name,
				Enabled:            st.Enabled,
				CircuitBreakerOpen: st.CircuitBreakerOpen,
			})
			// 無効なチャネルのブレーカー状態は無視する
			if st.Enabled && st.CircuitBreakerOpen {
				healthy = false
			}
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, ChannelHealthResponse{Healthy: healthy, Channels: channels})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
