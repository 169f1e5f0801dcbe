package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_products",
		Help:      "Products in the catalog",
	})

	LowStockProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_low_stock_products",
		Help:      "Products below the low-stock threshold",
	})

	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Analysis requests by kind and outcome",
	}, []string{"kind", "outcome"})

	AnalysisCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_cache_lookups_total",
		Help:      "Memo cache lookups for text analyses",
	}, []string{"kind", "result"})

	CartOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Cart mutations by operation and result",
	}, []string{"operation", "result"})

	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Checkout attempts by result",
	}, []string{"result"})

	checkoutAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_amount",
		Help:      "Bill totals of completed checkouts",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	SensorReadingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sensor_readings_total",
		Help:      "Sensor readings persisted",
	})

	// sensor: temperature, humidity, moisture
	SensorValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sensor_value",
		Help:      "Latest value per sensor",
	}, []string{"sensor"})
)

// Analysis outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailure = "failure"
)

// RecordAnalysis records one analysis request and its outcome.
func RecordAnalysis(kind, outcome string) {
	AnalysesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordAnalysisCache records a memo cache lookup for a text analysis.
func RecordAnalysisCache(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	AnalysisCacheTotal.WithLabelValues(kind, result).Inc()
}

// RecordCartOperation records a cart mutation.
// Result is "success" or a short error class such as "out_of_stock".
func RecordCartOperation(operation, result string) {
	CartOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordCheckout records a checkout attempt. amount is only observed on success.
func RecordCheckout(result string, amount float64) {
	CheckoutsTotal.WithLabelValues(result).Inc()
	if result == OutcomeSuccess {
		checkoutAmount.Observe(amount)
	}
}

// RecordSensorReading records a persisted reading and updates the latest-value gauges.
func RecordSensorReading(temperature, humidity, moisture float64) {
	SensorReadingsTotal.Inc()
	SensorValue.WithLabelValues("temperature").Set(temperature)
	SensorValue.WithLabelValues("humidity").Set(humidity)
	SensorValue.WithLabelValues("moisture").Set(moisture)
}

// UpdateCatalogTotals is refreshed whenever dashboard stats are computed.
func UpdateCatalogTotals(products, lowStock int) {
	ProductsTotal.Set(float64(products))
	LowStockProducts.Set(float64(lowStock))
}
