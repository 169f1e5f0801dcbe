// Package dashboard serves the admin overview.
package dashboard

import (
	"log/slog"
	"net/http"

	"agrisense/internal/handler/http/respond"
	dashUC "agrisense/internal/usecase/dashboard"
)

type InventoryDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
}

type StatsDTO struct {
	TotalProducts  int64          `json:"totalProducts"`
	TotalMachinery int64          `json:"totalMachinery"`
	TotalVideos    int64          `json:"totalVideos"`
	TotalUsers     int64          `json:"totalUsers"`
	TotalInvoices  int64          `json:"totalInvoices"`
	TotalSales     float64        `json:"totalSales"`
	LowStockCount  int            `json:"lowStockCount"`
	Inventory      []InventoryDTO `json:"inventory"`
}

func toDTO(st *dashUC.Stats) StatsDTO {
	out := StatsDTO{
		TotalProducts:  st.Products,
		TotalMachinery: st.Machinery,
		TotalVideos:    st.Videos,
		TotalUsers:     st.Users,
		TotalInvoices:  st.Invoices,
		TotalSales:     st.TotalSales,
		LowStockCount:  st.LowStock,
		Inventory:      make([]InventoryDTO, 0, len(st.Inventory)),
	}
	for _, it := range st.Inventory {
		out.Inventory = append(out.Inventory, InventoryDTO(it))
	}
	return out
}

func Register(mux *http.ServeMux, svc *dashUC.Service) {
	mux.Handle("GET /dashboard", StatsHandler{svc})
}

type StatsHandler struct{ Svc *dashUC.Service }

func (h StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.Stats(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "dashboard stats failed", slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(st))
}
