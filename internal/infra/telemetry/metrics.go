package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_mqtt_published_total",
			Help: "Sensor readings sent to the MQTT broker by result",
		},
		[]string{"result"},
	)

	brokerConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "telemetry_mqtt_connected",
			Help: "1 when the MQTT broker connection is up",
		},
	)
)
