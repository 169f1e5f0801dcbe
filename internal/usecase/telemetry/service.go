// Package telemetry samples the field sensors, stores the readings and
// forwards them to subscribers.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"agrisense/internal/domain/entity"
	"agrisense/internal/observability/metrics"
	"agrisense/internal/repository"
)

// History limits.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 500
)

// DefaultRetention is how long readings are kept when no retention is configured.
const DefaultRetention = 7 * 24 * time.Hour

// Publisher forwards a reading to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, r *entity.SensorReading) error
}

// NoopPublisher drops every reading.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *entity.SensorReading) error { return nil }

type Service struct {
	Repo      repository.SensorRepository
	Sensor    *Simulator
	Publisher Publisher
}

// NewService wires a service. A nil publisher disables publishing.
func NewService(repo repository.SensorRepository, sensor *Simulator, pub Publisher) *Service {
	if pub == nil {
		pub = NoopPublisher{}
	}
	return &Service{Repo: repo, Sensor: sensor, Publisher: pub}
}

// Resume restarts the random walk from the latest stored reading, if any.
func (s *Service) Resume(ctx context.Context) error {
	last, err := s.Repo.Latest(ctx)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	if last != nil {
		s.Sensor.Resume(*last)
	}
	return nil
}

// Sample takes the next reading, persists it and publishes it. A publish
// failure is logged and does not fail the sample.
func (s *Service) Sample(ctx context.Context) (*entity.SensorReading, error) {
	r := s.Sensor.Next()
	if err := s.Repo.Insert(ctx, &r); err != nil {
		return nil, fmt.Errorf("insert reading: %w", err)
	}
	metrics.RecordSensorReading(r.Temperature, r.Humidity, r.Moisture)

	if err := s.Publisher.Publish(ctx, &r); err != nil {
		slog.Warn("failed to publish sensor reading",
			slog.Int64("reading_id", r.ID),
			slog.Any("error", err))
	}
	return &r, nil
}

// Latest returns the newest stored reading, or nil when there is none.
func (s *Service) Latest(ctx context.Context) (*entity.SensorReading, error) {
	r, err := s.Repo.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest reading: %w", err)
	}
	return r, nil
}

// History returns up to limit recent readings, oldest first.
// limit <= 0 uses DefaultHistoryLimit; values above MaxHistoryLimit are capped.
func (s *Service) History(ctx context.Context, limit int) ([]*entity.SensorReading, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	rs, err := s.Repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return rs, nil
}

// Prune deletes readings older than olderThan and returns how many were removed.
func (s *Service) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		olderThan = DefaultRetention
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	n, err := s.Repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune readings: %w", err)
	}
	slog.Info("pruned sensor readings",
		slog.Time("cutoff", cutoff),
		slog.Int64("deleted", n))
	return n, nil
}
