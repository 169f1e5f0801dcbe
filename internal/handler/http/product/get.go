package product

import (
	"net/http"

	"agrisense/internal/handler/http/pathutil"
	"agrisense/internal/handler/http/respond"
	prodUC "agrisense/internal/usecase/product"
)

type GetHandler struct{ Svc *prodUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(p))
}
