// Package telemetry serves the stored field sensor readings.
package telemetry

import (
	"errors"
	"net/http"
	"strconv"

	"agrisense/internal/domain/entity"
	"agrisense/internal/handler/http/respond"
	telemetryUC "agrisense/internal/usecase/telemetry"
)

func Register(mux *http.ServeMux, svc *telemetryUC.Service) {
	mux.Handle("GET /telemetry/latest", LatestHandler{svc})
	mux.Handle("GET /telemetry/history", HistoryHandler{svc})
}

type LatestHandler struct{ Svc *telemetryUC.Service }

func (h LatestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reading, err := h.Svc.Latest(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if reading == nil {
		respond.SafeError(w, http.StatusNotFound, errors.New("sensor reading not found"))
		return
	}
	respond.JSON(w, http.StatusOK, reading)
}

type HistoryHandler struct{ Svc *telemetryUC.Service }

// ServeHTTP ?limit= 省略時はデフォルト件数
func (h HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond.SafeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	readings, err := h.Svc.History(r.Context(), limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if readings == nil {
		readings = []*entity.SensorReading{}
	}
	respond.JSON(w, http.StatusOK, readings)
}
