package product

import (
	"net/http"

	"agrisense/internal/handler/http/pathutil"
	"agrisense/internal/handler/http/respond"
	prodUC "agrisense/internal/usecase/product"
)

type DeleteHandler struct{ Svc *prodUC.Service }

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
