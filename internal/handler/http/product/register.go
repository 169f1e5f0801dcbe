package product

import (
	"net/http"

	prodUC "agrisense/internal/usecase/product"
)

// Register mounts the product routes. Write routes are restricted to admins
// by the global authz middleware.
func Register(mux *http.ServeMux, svc *prodUC.Service) {
	mux.Handle("GET /products", ListHandler{svc})
	mux.Handle("GET /products/search", SearchHandler{svc})
	mux.Handle("GET /products/{id}", GetHandler{svc})

	mux.Handle("POST /products", CreateHandler{svc})
	mux.Handle("PUT /products/{id}", UpdateHandler{svc})
	mux.Handle("DELETE /products/{id}", DeleteHandler{svc})
}
