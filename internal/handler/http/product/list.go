package product

import (
	"errors"
	"net/http"
	"strconv"

	"agrisense/internal/handler/http/respond"
	"agrisense/internal/repository"
	prodUC "agrisense/internal/usecase/product"
)

type ListHandler struct{ Svc *prodUC.Service }

// ServeHTTP 商品一覧
// Query: category=<Seeds|Supplements|...>, low_stock=true
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ProductFilter{Category: q.Get("category")}
	if raw := q.Get("low_stock"); raw != "" {
		low, err := strconv.ParseBool(raw)
		if err != nil {
			respond.SafeError(w, http.StatusBadRequest, errors.New("low_stock must be true or false"))
			return
		}
		filter.LowStock = low
	}

	products, err := h.Svc.List(r.Context(), filter)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(products))
}

type SearchHandler struct{ Svc *prodUC.Service }

// ServeHTTP 商品検索 (?q=)
func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	kw := r.URL.Query().Get("q")
	if kw == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("query parameter q is required"))
		return
	}
	products, err := h.Svc.Search(r.Context(), kw)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(products))
}
