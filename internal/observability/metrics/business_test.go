package metrics

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAnalysis(t *testing.T) {
	before := testutil.ToFloat64(AnalysesTotal.WithLabelValues("soil", OutcomeSuccess))
	RecordAnalysis("soil", OutcomeSuccess)
	RecordAnalysis("soil", OutcomeSuccess)
	after := testutil.ToFloat64(AnalysesTotal.WithLabelValues("soil", OutcomeSuccess))
	assert.Equal(t, before+2, after)
}

func TestRecordAnalysisCache(t *testing.T) {
	hits := testutil.ToFloat64(AnalysisCacheTotal.WithLabelValues("crops", "hit"))
	misses := testutil.ToFloat64(AnalysisCacheTotal.WithLabelValues("crops", "miss"))

	RecordAnalysisCache("crops", true)
	RecordAnalysisCache("crops", false)
	RecordAnalysisCache("crops", false)

	assert.Equal(t, hits+1, testutil.ToFloat64(AnalysisCacheTotal.WithLabelValues("crops", "hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(AnalysisCacheTotal.WithLabelValues("crops", "miss")))
}

func TestRecordCartOperation(t *testing.T) {
	before := testutil.ToFloat64(CartOperationsTotal.WithLabelValues("add_item", "out_of_stock"))
	RecordCartOperation("add_item", "out_of_stock")
	assert.Equal(t, before+1, testutil.ToFloat64(CartOperationsTotal.WithLabelValues("add_item", "out_of_stock")))
}

func TestRecordCheckout(t *testing.T) {
	tests := []struct {
		name   string
		result string
		amount float64
	}{
		{name: "success", result: OutcomeSuccess, amount: 42.5},
		{name: "empty cart", result: "empty_cart"},
		{name: "out of stock", result: "out_of_stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(CheckoutsTotal.WithLabelValues(tt.result))
			assert.NotPanics(t, func() {
				RecordCheckout(tt.result, tt.amount)
			})
			assert.Equal(t, before+1, testutil.ToFloat64(CheckoutsTotal.WithLabelValues(tt.result)))
		})
	}
}

func TestRecordSensorReading(t *testing.T) {
	before := testutil.ToFloat64(SensorReadingsTotal)
	RecordSensorReading(24.3, 66, 41.5)

	assert.Equal(t, before+1, testutil.ToFloat64(SensorReadingsTotal))
	assert.Equal(t, 24.3, testutil.ToFloat64(SensorValue.WithLabelValues("temperature")))
	assert.Equal(t, 66.0, testutil.ToFloat64(SensorValue.WithLabelValues("humidity")))
	assert.Equal(t, 41.5, testutil.ToFloat64(SensorValue.WithLabelValues("moisture")))
}

func TestUpdateCatalogTotals(t *testing.T) {
	UpdateCatalogTotals(12, 3)
	assert.Equal(t, 12.0, testutil.ToFloat64(ProductsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(LowStockProducts))
}

func TestRegisterDBStats(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterDBStats(reg, db, "agrisense"))
	require.NoError(t, RegisterDBStats(reg, db, "agrisense"), "second registration is ignored")

	n, err := testutil.GatherAndCount(reg, "go_sql_max_open_connections", "go_sql_idle_connections")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/products/:id", "200"))
	RecordHTTPRequest("GET", "/products/:id", "200", 10*time.Millisecond, 0, 512)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/products/:id", "200")))
}
