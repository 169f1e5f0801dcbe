package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

const probeTimeout = 2 * time.Second

// Dependency is something the worker needs to do useful work. A failing
// probe makes the readiness endpoint report 503 even after SetReady(true).
type Dependency struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthServer serves the worker's liveness and readiness probes.
type HealthServer struct {
	addr   string
	logger *slog.Logger
	deps   []Dependency
	ready  atomic.Bool
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewHealthServer starts out not ready.
func NewHealthServer(addr string, logger *slog.Logger, deps ...Dependency) *HealthServer {
	return &HealthServer{addr: addr, logger: logger, deps: deps}
}

func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		h.write(w, http.StatusOK, healthResponse{Status: "ok"})
	})
	mux.HandleFunc("GET /health/ready", h.readiness)
	return mux
}

func (h *HealthServer) readiness(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		h.write(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
		return
	}

	resp := healthResponse{Status: "ok"}
	code := http.StatusOK
	if len(h.deps) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		resp.Checks = make(map[string]string, len(h.deps))
		for _, d := range h.deps {
			if err := d.Probe(ctx); err != nil {
				resp.Checks[d.Name] = "unhealthy"
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
				h.logger.Warn("readiness probe failed", slog.String("dependency", d.Name), slog.Any("error", err))
				continue
			}
			resp.Checks[d.Name] = "healthy"
		}
	}
	h.write(w, code, resp)
}

// Start serves until ctx is cancelled, then shuts down gracefully and
// returns http.ErrServerClosed.
func (h *HealthServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              h.addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	h.logger.Info("health server listening", slog.String("addr", h.addr))

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return http.ErrServerClosed
}

func (h *HealthServer) SetReady(ready bool) {
	if h.ready.Swap(ready) != ready {
		h.logger.Info("worker readiness changed", slog.Bool("ready", ready))
	}
}

func (h *HealthServer) write(w http.ResponseWriter, code int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
