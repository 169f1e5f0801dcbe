package video

import (
	"encoding/json"
	"errors"
	"net/http"

	"agrisense/internal/domain/entity"
	"agrisense/internal/handler/http/pathutil"
	"agrisense/internal/handler/http/respond"
	videoUC "agrisense/internal/usecase/video"
)

// Register mounts the video routes.
func Register(mux *http.ServeMux, svc *videoUC.Service) {
	mux.Handle("GET /videos", ListHandler{svc})
	mux.Handle("GET /videos/search", SearchHandler{svc})
	mux.Handle("GET /videos/{id}", GetHandler{svc})
	mux.Handle("POST /videos", CreateHandler{svc})
	mux.Handle("PUT /videos/{id}", UpdateHandler{svc})
	mux.Handle("DELETE /videos/{id}", DeleteHandler{svc})
}

func statusFor(err error) int {
	switch {
	case entity.IsValidationError(err), errors.Is(err, videoUC.ErrInvalidVideoID):
		return http.StatusBadRequest
	case errors.Is(err, videoUC.ErrVideoNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type ListHandler struct{ Svc *videoUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vs, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(vs))
}

type SearchHandler struct{ Svc *videoUC.Service }

func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	kw := r.URL.Query().Get("q")
	if kw == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("query parameter q is required"))
		return
	}
	vs, err := h.Svc.Search(r.Context(), kw)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(vs))
}

type GetHandler struct{ Svc *videoUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	v, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(v))
}

type CreateHandler struct{ Svc *videoUC.Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	v, err := h.Svc.Create(r.Context(), req.input())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(v))
}

type UpdateHandler struct{ Svc *videoUC.Service }

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
	v, err := h.Svc.Update(r.Context(), id, req.input())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(v))
}

type DeleteHandler struct{ Svc *videoUC.Service }

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
