package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery outcomes. A dropped delivery never reached the channel.
const (
	outcomeSent    = "sent"
	outcomeFailed  = "failed"
	outcomeDropped = "dropped"
)

// Drop reasons.
const (
	dropPoolFull    = "pool_full"
	dropShutdown    = "shutdown"
	dropCircuitOpen = "circuit_open"
)

var (
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrisense_notify_deliveries_total",
		Help: "Notification deliveries per channel, event and outcome",
	}, []string{"channel", "event", "outcome"})

	dropsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrisense_notify_drops_total",
		Help: "Notifications dropped before delivery, by reason",
	}, []string{"channel", "reason"})

	deliverySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agrisense_notify_delivery_seconds",
		Help:    "Time spent delivering one notification, retries included",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
	}, []string{"channel"})

	inflightDeliveries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agrisense_notify_inflight",
		Help: "Deliveries dispatched but not yet finished",
	})

	enabledChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agrisense_notify_channels_enabled",
		Help: "Number of configured notification channels",
	})
)

// observeDelivery records a delivery that reached the channel.
func observeDelivery(channel, event string, err error, took time.Duration) {
	outcome := outcomeSent
	if err != nil {
		outcome = outcomeFailed
	}
	deliveriesTotal.WithLabelValues(channel, event, outcome).Inc()
	deliverySeconds.WithLabelValues(channel).Observe(took.Seconds())
}

func observeDrop(channel, event, reason string) {
	deliveriesTotal.WithLabelValues(channel, event, outcomeDropped).Inc()
	dropsTotal.WithLabelValues(channel, reason).Inc()
}
