// Package bill provides HTTP handlers for checkout and invoices.
package bill

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"agrisense/internal/domain/entity"
	"agrisense/internal/handler/http/pathutil"
	"agrisense/internal/handler/http/respond"
	billUC "agrisense/internal/usecase/bill"
)

type ItemDTO struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

type DTO struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customerName"`
	Items        []ItemDTO `json:"items"`
	Total        float64   `json:"total"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toDTO(b *entity.BillReport) DTO {
	items := make([]ItemDTO, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, ItemDTO(it))
	}
	return DTO{ID: b.ID, CustomerName: b.CustomerName, Items: items, Total: b.Total, CreatedAt: b.CreatedAt}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, billUC.ErrInvalidBillID), errors.Is(err, billUC.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, billUC.ErrBillNotFound), errors.Is(err, billUC.ErrCartNotFound):
		return http.StatusNotFound
	case errors.Is(err, billUC.ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Register mounts checkout and the bill routes.
func Register(mux *http.ServeMux, svc *billUC.Service) {
	mux.Handle("POST /cart/{cartID}/checkout", CheckoutHandler{svc})
	mux.Handle("GET /bills", ListHandler{svc})
	mux.Handle("GET /bills/{id}", GetHandler{svc})
	mux.Handle("DELETE /bills/{id}", DeleteHandler{svc})
}

type CheckoutHandler struct{ Svc *billUC.Service }

// ServeHTTP チェックアウト {customerName} → 201 BillReport
// ボディは省略可 (Walk-in Customer)
func (h CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName string `json:"customerName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	b, err := h.Svc.Checkout(r.Context(), r.PathValue("cartID"), req.CustomerName)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Location", "/bills/"+strconv.FormatInt(b.ID, 10))
	respond.JSON(w, http.StatusCreated, toDTO(b))
}

type ListHandler struct{ Svc *billUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	out := make([]DTO, 0, len(bills))
	for _, b := range bills {
		out = append(out, toDTO(b))
	}
	respond.JSON(w, http.StatusOK, out)
}

type GetHandler struct{ Svc *billUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	b, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(b))
}

type DeleteHandler struct{ Svc *billUC.Service }

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
