package repository

import (
	"context"

	"agrisense/internal/domain/entity"
)

type VideoRepository interface {
	Get(ctx context.Context, id int64) (*entity.Video, error)
	List(ctx context.Context) ([]*entity.Video, error)
	Search(ctx context.Context, keyword string) ([]*entity.Video, error)
	Create(ctx context.Context, v *entity.Video) error
	Update(ctx context.Context, v *entity.Video) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
