package repository

import (
	"context"

	"agrisense/internal/domain/entity"
)

// BillRepository persists bills. Create decrements product stock for every
// line in the same transaction and fails with entity.ErrInsufficientStock
// (leaving nothing written) if any product lacks the quantity.
type BillRepository interface {
	Get(ctx context.Context, id int64) (*entity.BillReport, error)
	List(ctx context.Context) ([]*entity.BillReport, error)
	Create(ctx context.Context, bill *entity.BillReport) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	TotalSales(ctx context.Context) (float64, error)
}
