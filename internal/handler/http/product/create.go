package product

import (
	"encoding/json"
	"errors"
	"net/http"

	"agrisense/internal/handler/http/respond"
	prodUC "agrisense/internal/usecase/product"
)

type CreateHandler struct{ Svc *prodUC.Service }

// ServeHTTP 商品登録
// category と description は省略時にデフォルト値を使う
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Price       float64 `json:"price"`
		Description string  `json:"description"`
		Quantity    int     `json:"quantity"`
		Category    string  `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	p, err := h.Svc.Create(r.Context(), prodUC.CreateInput{
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
	respond.JSON(w, http.StatusCreated, toDTO(p))
}
