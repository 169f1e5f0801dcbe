// Package machinery provides HTTP handlers for the farm machinery catalog.
package machinery

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"agrisense/internal/domain/entity"
	"agrisense/internal/handler/http/pathutil"
	"agrisense/internal/handler/http/respond"
	machUC "agrisense/internal/usecase/machinery"
)

type DTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

type request struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
}

func (r request) input() machUC.Input {
	return machUC.Input{Name: r.Name, Price: r.Price, Description: r.Description, ImageURL: r.ImageURL}
}

func toDTO(m *entity.Machinery) DTO {
	return DTO{ID: m.ID, Name: m.Name, Price: m.Price, Description: m.Description, ImageURL: m.ImageURL, CreatedAt: m.CreatedAt}
}

func statusFor(err error) int {
	switch {
	case entity.IsValidationError(err), errors.Is(err, machUC.ErrInvalidMachineryID):
		return http.StatusBadRequest
	case errors.Is(err, machUC.ErrMachineryNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Register mounts the machinery routes.
func Register(mux *http.ServeMux, svc *machUC.Service) {
	mux.Handle("GET /machinery", ListHandler{svc})
	mux.Handle("GET /machinery/{id}", GetHandler{svc})
	mux.Handle("POST /machinery", CreateHandler{svc})
	mux.Handle("PUT /machinery/{id}", UpdateHandler{svc})
	mux.Handle("DELETE /machinery/{id}", DeleteHandler{svc})
}

type ListHandler struct{ Svc *machUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	out := make([]DTO, 0, len(items))
	for _, m := range items {
		out = append(out, toDTO(m))
	}
	respond.JSON(w, http.StatusOK, out)
}

type GetHandler struct{ Svc *machUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	m, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(m))
}

type CreateHandler struct{ Svc *machUC.Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	m, err := h.Svc.Create(r.Context(), req.input())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(m))
}

// UpdateHandler replaces every field; omitted optional fields fall back to defaults.
type UpdateHandler struct{ Svc *machUC.Service }

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	m, err := h.Svc.Update(r.Context(), id, req.input())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(m))
}

type DeleteHandler struct{ Svc *machUC.Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
