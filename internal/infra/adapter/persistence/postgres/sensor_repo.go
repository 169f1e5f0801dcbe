package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"agrisense/internal/domain/entity"
	"agrisense/internal/repository"
)

type SensorRepo struct{ db *sql.DB }

func NewSensorRepo(db *sql.DB) repository.SensorRepository {
	return &SensorRepo{db: db}
}

func (repo *SensorRepo) Insert(ctx context.Context, r *entity.SensorReading) error {
	const query = `
INSERT INTO sensor_readings (temperature, humidity, moisture, recorded_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	if err := repo.db.QueryRowContext(ctx, query,
		r.Temperature, r.Humidity, r.Moisture, r.RecordedAt,
	).Scan(&r.ID); err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

func (repo *SensorRepo) Latest(ctx context.Context) (*entity.SensorReading, error) {
	const query = `
SELECT id, temperature, humidity, moisture, recorded_at
FROM sensor_readings
ORDER BY recorded_at DESC, id DESC
LIMIT 1`
	var r entity.SensorReading
	err := repo.db.QueryRowContext(ctx, query).Scan(&r.ID, &r.Temperature, &r.Humidity, &r.Moisture, &r.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Latest: %w", err)
	}
	return &r, nil
}

// Recent returns up to limit readings in chronological order (oldest first).
func (repo *SensorRepo) Recent(ctx context.Context, limit int) ([]*entity.SensorReading, error) {
	const query = `
SELECT id, temperature, humidity, moisture, recorded_at
FROM sensor_readings
ORDER BY recorded_at DESC, id DESC
LIMIT $1`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("Recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	readings := make([]*entity.SensorReading, 0, limit)
	for rows.Next() {
		var r entity.SensorReading
		if err := rows.Scan(&r.ID, &r.Temperature, &r.Humidity, &r.Moisture, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("Recent: %w", err)
		}
		readings = append(readings, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Recent: %w", err)
	}
	slices.Reverse(readings)
	return readings, nil
}

func (repo *SensorRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM sensor_readings WHERE recorded_at < $1`
	res, err := repo.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("DeleteBefore: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
