package repository

import (
	"context"

	"agrisense/internal/domain/entity"
)

type UserRepository interface {
	Get(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
