package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron schedules with a per-run timeout.
// Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron    *cron.Cron
	metrics *WorkerMetrics
	logger  *slog.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler builds a scheduler evaluating schedules in cfg.Timezone.
func NewScheduler(cfg *WorkerConfig, metrics *WorkerMetrics, logger *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	cl := cronLogger{logger: logger}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		metrics: metrics,
		logger:  logger,
		timeout: cfg.JobTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Register schedules job under name.
func (s *Scheduler) Register(name, spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { _ = s.Run(s.ctx, name, job) }); err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	s.logger.Info("job registered", slog.String("job", name), slog.String("schedule", spec))
	return nil
}

// Run executes job once with the scheduler's timeout and records metrics.
func (s *Scheduler) Run(ctx context.Context, name string, job Job) error {
	if err := ctx.Err(); err != nil {
		// 停止中に発火したジョブは実行しない
		s.metrics.RecordJobRun(name, JobSkipped)
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := job(ctx)
	elapsed := time.Since(start)
	s.metrics.RecordJobDuration(name, elapsed)

	if err != nil {
		s.metrics.RecordJobRun(name, JobFailure)
		s.logger.Error("job failed",
			slog.String("job", name),
			slog.Duration("duration", elapsed),
			slog.Any("error", err))
		return err
	}
	s.metrics.RecordJobRun(name, JobSuccess)
	s.metrics.RecordLastSuccess(name)
	s.logger.Debug("job completed", slog.String("job", name), slog.Duration("duration", elapsed))
	return nil
}

// Start begins firing schedules in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops new runs and waits for running jobs until ctx expires,
// at which point their contexts are cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	defer s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running jobs: %w", ctx.Err())
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	// SkipIfStillRunning logs "skip"; "wake" and friends fire on every tick
	if msg == "skip" {
		l.logger.Warn("job still running, skipping run", keysAndValues...)
		return
	}
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, slog.Any("error", err))...)
}
