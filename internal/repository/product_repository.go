package repository

import (
	"context"

	"agrisense/internal/domain/entity"
)

// ProductFilter narrows List results. Zero values disable a filter.
type ProductFilter struct {
	Category string
	LowStock bool
}

type ProductRepository interface {
	Get(ctx context.Context, id int64) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Search(ctx context.Context, keyword string) ([]*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
