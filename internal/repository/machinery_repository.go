package repository

import (
	"context"

	"agrisense/internal/domain/entity"
)

type MachineryRepository interface {
	Get(ctx context.Context, id int64) (*entity.Machinery, error)
	List(ctx context.Context) ([]*entity.Machinery, error)
	Create(ctx context.Context, m *entity.Machinery) error
	Update(ctx context.Context, m *entity.Machinery) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
