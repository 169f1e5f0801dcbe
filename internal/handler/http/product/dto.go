// Package product provides HTTP handlers for the marketplace catalog.
package product

import (
	"errors"
	"net/http"
	"time"

	"agrisense/internal/domain/entity"
	"agrisense/internal/handler/http/pathutil"
	prodUC "agrisense/internal/usecase/product"
)

// DTO is the JSON form of a product.
type DTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	Category    string    `json:"category"`
	StockStatus string    `json:"stockStatus"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toDTO(p *entity.Product) DTO {
	return DTO{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Quantity:    p.Quantity,
		Category:    p.Category,
		StockStatus: p.StockStatus(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toDTOs(ps []*entity.Product) []DTO {
	out := make([]DTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, toDTO(p))
	}
	return out
}

// statusFor maps usecase errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case entity.IsValidationError(err),
		errors.Is(err, prodUC.ErrInvalidProductID),
		errors.Is(err, pathutil.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, prodUC.ErrProductNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
