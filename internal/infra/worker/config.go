package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agrisense/internal/pkg/config"
)

// WorkerConfig holds the schedules and limits of the background worker.
type WorkerConfig struct {
	// SensorSchedule drives telemetry sampling (cron expression or "@every" descriptor).
	SensorSchedule string

	// StockAuditSchedule drives the low-stock notification sweep.
	StockAuditSchedule string

	// RetentionSchedule drives pruning of old sensor readings.
	RetentionSchedule string

	// Timezone is the IANA zone the schedules are evaluated in.
	Timezone string

	// NotifyMaxConcurrent bounds concurrent webhook deliveries.
	NotifyMaxConcurrent int

	// JobTimeout bounds a single job run.
	JobTimeout time.Duration

	// HealthPort is where /health and /health/ready are served.
	HealthPort int

	// TelemetryRetention is how long sensor readings are kept.
	TelemetryRetention time.Duration
}

// DefaultConfig returns the configuration used when no env vars are set.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		SensorSchedule:      "@every 3s",
		StockAuditSchedule:  "0 7 * * *",
		RetentionSchedule:   "0 3 * * *",
		Timezone:            "UTC",
		NotifyMaxConcurrent: 10,
		JobTimeout:          2 * time.Minute,
		HealthPort:          9091,
		TelemetryRetention:  7 * 24 * time.Hour,
	}
}

// Validate returns every problem found, joined.
func (c *WorkerConfig) Validate() error {
	check := func(field string, err error) error {
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		return nil
	}
	err := errors.Join(
		check("sensor schedule", config.CronSchedule(c.SensorSchedule)),
		check("stock audit schedule", config.CronSchedule(c.StockAuditSchedule)),
		check("retention schedule", config.CronSchedule(c.RetentionSchedule)),
		check("timezone", config.Timezone(c.Timezone)),
		check("notify max concurrent", notifyConcurrency(c.NotifyMaxConcurrent)),
		check("job timeout", config.Positive(c.JobTimeout)),
		check("health port", healthPort(c.HealthPort)),
		check("telemetry retention", retentionWindow(c.TelemetryRetention)),
	)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

var (
	notifyConcurrency = config.Between(1, 50)
	healthPort        = config.Between(1024, 65535)
	jobTimeoutRange   = config.Between(time.Second, 30*time.Minute)
	retentionWindow   = config.Between(time.Hour, 365*24*time.Hour)
)

// LoadConfigFromEnv reads the worker configuration fail-open: an invalid
// value is logged, counted in metrics and replaced with its default.
//
// Environment variables:
//   - SENSOR_SCHEDULE (default: @every 3s)
//   - STOCK_AUDIT_SCHEDULE (default: 0 7 * * *)
//   - RETENTION_SCHEDULE (default: 0 3 * * *)
//   - WORKER_TIMEZONE (default: UTC)
//   - NOTIFY_MAX_CONCURRENT (default: 10, range 1-50)
//   - WORKER_JOB_TIMEOUT (default: 2m, range 1s-30m)
//   - WORKER_HEALTH_PORT (default: 9091)
//   - TELEMETRY_RETENTION (default: 168h, range 1h-8760h)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	def := DefaultConfig()
	l := config.NewLoader(logger, metrics.Config)
	defer l.Finish()

	return &WorkerConfig{
		SensorSchedule:      config.Get(l, "sensor_schedule", "SENSOR_SCHEDULE", def.SensorSchedule, config.String, config.CronSchedule),
		StockAuditSchedule:  config.Get(l, "stock_audit_schedule", "STOCK_AUDIT_SCHEDULE", def.StockAuditSchedule, config.String, config.CronSchedule),
		RetentionSchedule:   config.Get(l, "retention_schedule", "RETENTION_SCHEDULE", def.RetentionSchedule, config.String, config.CronSchedule),
		Timezone:            config.Get(l, "timezone", "WORKER_TIMEZONE", def.Timezone, config.String, config.Timezone),
		NotifyMaxConcurrent: config.Get(l, "notify_max_concurrent", "NOTIFY_MAX_CONCURRENT", def.NotifyMaxConcurrent, config.Int, notifyConcurrency),
		JobTimeout:          config.Get(l, "job_timeout", "WORKER_JOB_TIMEOUT", def.JobTimeout, config.Duration, jobTimeoutRange),
		HealthPort:          config.Get(l, "health_port", "WORKER_HEALTH_PORT", def.HealthPort, config.Int, healthPort),
		TelemetryRetention:  config.Get(l, "telemetry_retention", "TELEMETRY_RETENTION", def.TelemetryRetention, config.Duration, retentionWindow),
	}
}
