package worker

import (
	"time"

	"agrisense/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job outcomes recorded in worker_job_runs_total.
const (
	JobSuccess = "success"
	JobFailure = "failure"
	JobSkipped = "skipped"
)

// WorkerMetrics holds configuration and job metrics for the worker.
type WorkerMetrics struct {
	Config *config.Metrics

	JobRunsTotal *prometheus.CounterVec

	JobDurationSeconds *prometheus.HistogramVec

	JobLastSuccessTimestamp *prometheus.GaugeVec
}

// NewWorkerMetrics registers worker metrics with the default registry.
func NewWorkerMetrics() *WorkerMetrics {
	return NewWorkerMetricsWith(prometheus.DefaultRegisterer)
}

// NewWorkerMetricsWith registers worker metrics with reg. Tests pass a fresh registry.
func NewWorkerMetricsWith(reg prometheus.Registerer) *WorkerMetrics {
	factory := promauto.With(reg)
	return &WorkerMetrics{
		Config: config.NewMetricsWith(reg, "worker"),

		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of worker job runs by job and status",
		}, []string{"job", "status"}),

		JobDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of worker job execution in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		}, []string{"job"}),

		JobLastSuccessTimestamp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		}, []string{"job"}),
	}
}

func (m *WorkerMetrics) RecordJobRun(job, status string) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}

func (m *WorkerMetrics) RecordJobDuration(job string, d time.Duration) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(d.Seconds())
}

func (m *WorkerMetrics) RecordLastSuccess(job string) {
	m.JobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
