package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pgRepo "agrisense/internal/infra/adapter/persistence/postgres"
	"agrisense/internal/infra/db"
	infraTelemetry "agrisense/internal/infra/telemetry"
	workerPkg "agrisense/internal/infra/worker"
	"agrisense/internal/observability/logging"
	"agrisense/internal/observability/metrics"
	"agrisense/internal/usecase/notify"
	"agrisense/internal/usecase/product"
	telemetryUC "agrisense/internal/usecase/telemetry"
	envcfg "agrisense/pkg/config"
)

func main() {
	logger := logging.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("sensor_schedule", workerConfig.SensorSchedule),
		slog.String("stock_audit_schedule", workerConfig.StockAuditSchedule),
		slog.String("retention_schedule", workerConfig.RetentionSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	notifyService := notify.NewService(notify.ChannelsFromEnv(logger), workerConfig.NotifyMaxConcurrent)

	publisher, closePublisher := initPublisher(ctx, logger)
	defer closePublisher()

	sensors := telemetryUC.NewService(pgRepo.NewSensorRepo(database), telemetryUC.NewSimulator(), publisher)
	if err := sensors.Resume(ctx); err != nil {
		// 初回起動時は履歴が無いので既定値から始める
		logger.Warn("could not resume sensor state", slog.Any("error", err))
	}
	products := &product.Service{Repo: pgRepo.NewProductRepo(database)}

	startMetricsServer(ctx, logger, notifyService)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger,
		workerPkg.Dependency{Name: "database", Probe: database.PingContext})
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	scheduler, err := workerPkg.NewScheduler(workerConfig, workerMetrics, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	if err := registerJobs(scheduler, workerConfig, sensors, products, notifyService, logger); err != nil {
		logger.Error("failed to register jobs", slog.Any("error", err))
		os.Exit(1)
	}

	scheduler.Start()
	healthServer.SetReady(true)
	logger.Info("worker started")

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduler did not stop cleanly", slog.Any("error", err))
	}
	if err := notifyService.Shutdown(shutdownCtx); err != nil {
		logger.Warn("notification service shutdown timed out", slog.Any("error", err))
	}
	logger.Info("worker stopped")
}

// registerJobs wires the periodic jobs onto the scheduler.
func registerJobs(
	s *workerPkg.Scheduler,
	cfg *workerPkg.WorkerConfig,
	sensors *telemetryUC.Service,
	products *product.Service,
	notifier notify.Service,
	logger *slog.Logger,
) error {
	jobs := []struct {
		name string
		spec string
		job  workerPkg.Job
	}{
		{"sensor_sample", cfg.SensorSchedule, func(ctx context.Context) error {
			_, err := sensors.Sample(ctx)
			return err
		}},
		{"stock_audit", cfg.StockAuditSchedule, func(ctx context.Context) error {
			n, err := products.Audit(ctx, notifier)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("low stock reported", slog.Int("products", n))
			}
			return nil
		}},
		{"telemetry_retention", cfg.RetentionSchedule, func(ctx context.Context) error {
			removed, err := sensors.Prune(ctx, cfg.TelemetryRetention)
			if err != nil {
				return err
			}
			logger.Info("telemetry pruned",
				slog.Int64("removed", removed),
				slog.Duration("retention", cfg.TelemetryRetention))
			return nil
		}},
	}
	for _, j := range jobs {
		if err := s.Register(j.name, j.spec, j.job); err != nil {
			return err
		}
	}
	return nil
}

// initDatabase opens the pool and waits for the schema the API migrates.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.Open(ctx, envcfg.GetEnvString("DATABASE_URL", ""), db.ConnectionConfigFromEnv())
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	waitForMigrations(ctx, logger, database)
	if err := metrics.RegisterDBStats(prometheus.DefaultRegisterer, database, "agrisense"); err != nil {
		logger.Warn("db pool metrics unavailable", slog.Any("error", err))
	}
	return database
}

func waitForMigrations(ctx context.Context, logger *slog.Logger, database *sql.DB) {
	const probe = "SELECT 1 FROM sensor_readings LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.ExecContext(ctx, probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		select {
		case <-ctx.Done():
			os.Exit(1)
		case <-time.After(3 * time.Second):
		}
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

// initPublisher connects the MQTT publisher when MQTT_ENABLED is set.
// Sampling keeps working without a broker.
func initPublisher(ctx context.Context, logger *slog.Logger) (telemetryUC.Publisher, func()) {
	cfg, err := infraTelemetry.LoadConfig()
	if err != nil {
		logger.Error("invalid MQTT configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if !cfg.Enabled {
		logger.Info("MQTT publishing disabled")
		return telemetryUC.NoopPublisher{}, func() {}
	}

	pub := infraTelemetry.NewMQTT(cfg)
	if err := pub.Connect(ctx); err != nil {
		logger.Warn("MQTT broker unavailable, readings will be stored only",
			slog.String("broker", cfg.Broker),
			slog.Any("error", err))
		return telemetryUC.NoopPublisher{}, func() {}
	}
	logger.Info("MQTT publisher connected",
		slog.String("broker", cfg.Broker),
		slog.String("topic", cfg.Topic))
	return pub, pub.Close
}
