package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics describes how a component's settings were loaded. Names carry the
// component prefix, e.g. worker_config_fallbacks_total.
type Metrics struct {
	Fallbacks      *prometheus.CounterVec
	FallbackActive prometheus.Gauge
	LoadedAt       prometheus.Gauge
}

func NewMetricsWith(reg prometheus.Registerer, component string) *Metrics {
	f := promauto.With(reg)
	opts := func(suffix, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: component, Subsystem: "config", Name: suffix, Help: help}
	}
	return &Metrics{
		Fallbacks: f.NewCounterVec(prometheus.CounterOpts(opts("fallbacks_total",
			"Settings rejected and replaced by their default")), []string{"field"}),
		FallbackActive: f.NewGauge(prometheus.GaugeOpts(opts("fallback_active",
			"1 while any setting runs on its default after a rejection"))),
		LoadedAt: f.NewGauge(prometheus.GaugeOpts(opts("load_timestamp",
			"Unix time of the last configuration load"))),
	}
}
