package repository

import (
	"context"
	"time"

	"agrisense/internal/domain/entity"
)

type SensorRepository interface {
	Insert(ctx context.Context, r *entity.SensorReading) error
	Latest(ctx context.Context) (*entity.SensorReading, error)
	Recent(ctx context.Context, limit int) ([]*entity.SensorReading, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
