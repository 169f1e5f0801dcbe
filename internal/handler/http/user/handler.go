// Package user provides HTTP handlers for the farmer directory.
package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"agrisense/internal/domain/entity"
	"agrisense/internal/handler/http/pathutil"
	"agrisense/internal/handler/http/respond"
	userUC "agrisense/internal/usecase/user"
)

type DTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Location  string    `json:"location"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type request struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Role     string `json:"role"`
}

func toDTO(u *entity.User) DTO {
	return DTO{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Location: u.Location, Role: u.Role, CreatedAt: u.CreatedAt}
}

func statusFor(err error) int {
	switch {
	case entity.IsValidationError(err), errors.Is(err, userUC.ErrInvalidUserID):
		return http.StatusBadRequest
	case errors.Is(err, userUC.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, userUC.ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Register mounts the user routes. Reads need the viewer role, writes admin.
func Register(mux *http.ServeMux, svc *userUC.Service) {
	mux.Handle("GET /users", ListHandler{svc})
	mux.Handle("GET /users/{id}", GetHandler{svc})
	mux.Handle("POST /users", SaveHandler{Svc: svc})
	mux.Handle("PUT /users/{id}", SaveHandler{Svc: svc, Update: true})
	mux.Handle("DELETE /users/{id}", DeleteHandler{svc})
}

type ListHandler struct{ Svc *userUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	out := make([]DTO, 0, len(users))
	for _, u := range users {
		out = append(out, toDTO(u))
	}
	respond.JSON(w, http.StatusOK, out)
}

type GetHandler struct{ Svc *userUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	u, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(u))
}

// SaveHandler serves both create (POST) and full update (PUT).
type SaveHandler struct {
	Svc    *userUC.Service
	Update bool
}

func (h SaveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var id int64
	if h.Update {
		var err error
		if id, err = pathutil.ParseID(r.PathValue("id")); err != nil {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	in := userUC.Input{Name: req.Name, Email: req.Email, Phone: req.Phone, Location: req.Location, Role: req.Role}

	var (
		u    *entity.User
		err  error
		code = http.StatusCreated
	)
	if h.Update {
		u, err = h.Svc.Update(r.Context(), id, in)
		code = http.StatusOK
	} else {
		u, err = h.Svc.Create(r.Context(), in)
	}
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, code, toDTO(u))
}

type DeleteHandler struct{ Svc *userUC.Service }

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
