// Package cart provides HTTP handlers for the shopper cart.
// Carts are anonymous and addressed by the uuid returned on creation.
package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"agrisense/internal/domain/entity"
	"agrisense/internal/handler/http/pathutil"
	"agrisense/internal/handler/http/respond"
	cartUC "agrisense/internal/usecase/cart"
)

// DTO is the JSON form of a cart with its computed totals.
type DTO struct {
	ID        string            `json:"id"`
	Items     []entity.CartItem `json:"items"`
	Subtotal  float64           `json:"subtotal"`
	ItemCount int               `json:"itemCount"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func toDTO(c *entity.Cart) DTO {
	items := c.Items
	if items == nil {
		items = []entity.CartItem{}
	}
	return DTO{ID: c.ID, Items: items, Subtotal: c.Subtotal(), ItemCount: c.ItemCount(), UpdatedAt: c.UpdatedAt}
}

func statusFor(err error) int {
	switch {
	case entity.IsValidationError(err), errors.Is(err, cartUC.ErrInvalidProductID), errors.Is(err, pathutil.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, cartUC.ErrCartNotFound), errors.Is(err, cartUC.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, cartUC.ErrOutOfStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Register mounts the cart routes. Checkout lives in the bill package.
func Register(mux *http.ServeMux, svc *cartUC.Service) {
	mux.Handle("POST /cart", CreateHandler{svc})
	mux.Handle("GET /cart/{cartID}", GetHandler{svc})
	mux.Handle("DELETE /cart/{cartID}", ClearHandler{svc})
	mux.Handle("POST /cart/{cartID}/items", AddItemHandler{svc})
	mux.Handle("DELETE /cart/{cartID}/items/{productID}", RemoveItemHandler{svc})
}

type CreateHandler struct{ Svc *cartUC.Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Create(r.Context())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Location", "/cart/"+c.ID)
	respond.JSON(w, http.StatusCreated, toDTO(c))
}

type GetHandler struct{ Svc *cartUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Get(r.Context(), r.PathValue("cartID"))
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(c))
}

type AddItemHandler struct{ Svc *cartUC.Service }

// ServeHTTP カートに商品を追加 {productId, quantity}
// quantity 省略時は 1
func (h AddItemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	c, err := h.Svc.AddItem(r.Context(), r.PathValue("cartID"), req.ProductID, req.Quantity)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(c))
}

type RemoveItemHandler struct{ Svc *cartUC.Service }

func (h RemoveItemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	productID, err := pathutil.ParseID(r.PathValue("productID"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := h.Svc.RemoveItem(r.Context(), r.PathValue("cartID"), productID)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(c))
}

type ClearHandler struct{ Svc *cartUC.Service }

func (h ClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Clear(r.Context(), r.PathValue("cartID")); err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
