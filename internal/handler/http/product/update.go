package product

import (
	"encoding/json"
	"errors"
	"net/http"

	"agrisense/internal/handler/http/pathutil"
	"agrisense/internal/handler/http/respond"
	prodUC "agrisense/internal/usecase/product"
)

type UpdateHandler struct{ Svc *prodUC.Service }

// ServeHTTP 商品更新 (部分更新: 指定したフィールドのみ)
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Description *string  `json:"description"`
		Quantity    *int     `json:"quantity"`
		Category    *string  `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	p, err := h.Svc.Update(r.Context(), prodUC.UpdateInput{
		ID:          id,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Quantity:    req.Quantity,
		Category:    req.Category,
	})
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(p))
}
