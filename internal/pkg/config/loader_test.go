package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_String(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		want         string
		wantFallback bool
	}{
		{"TC-1: unset uses default", "", "0 7 * * *", false},
		{"TC-2: five fields", "15 6 * * *", "15 6 * * *", false},
		{"TC-3: descriptor", "@every 3s", "@every 3s", false},
		{"TC-4: rejected", "every morning", "0 7 * * *", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STOCK_AUDIT_SCHEDULE", tt.value)

			got := Lookup("STOCK_AUDIT_SCHEDULE", "0 7 * * *", String, CronSchedule)

			if got.Value != tt.want {
				t.Errorf("Value = %q, want %q", got.Value, tt.want)
			}
			if got.FellBack() != tt.wantFallback {
				t.Errorf("FellBack() = %v, want %v", got.FellBack(), tt.wantFallback)
			}
			if tt.wantFallback {
				assert.Contains(t, got.Warning, "STOCK_AUDIT_SCHEDULE")
				assert.Contains(t, got.Warning, "every morning")
			}
		})
	}
}

func TestLookup_Int(t *testing.T) {
	tests := []struct {
		value        string
		want         int
		wantFallback bool
	}{
		{"", 10, false},
		{"4", 4, false},
		{" 12 ", 12, false},
		{"ten", 10, true},
		{"0", 10, true},
		{"51", 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("NOTIFY_MAX_CONCURRENT", tt.value)

			got := Lookup("NOTIFY_MAX_CONCURRENT", 10, Int, Between(1, 50))

			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.wantFallback, got.FellBack())
		})
	}
}

func TestLookup_Duration(t *testing.T) {
	t.Setenv("TELEMETRY_RETENTION", "72h")
	got := Lookup("TELEMETRY_RETENTION", time.Hour, Duration, Positive[time.Duration])
	assert.Equal(t, 72*time.Hour, got.Value)
	assert.False(t, got.FellBack())

	t.Setenv("TELEMETRY_RETENTION", "-5m")
	got = Lookup("TELEMETRY_RETENTION", time.Hour, Duration, Positive[time.Duration])
	assert.Equal(t, time.Hour, got.Value)
	assert.True(t, got.FellBack())

	t.Setenv("TELEMETRY_RETENTION", "a week")
	assert.True(t, Lookup("TELEMETRY_RETENTION", time.Hour, Duration).FellBack())
}

func TestLookup_Bool(t *testing.T) {
	t.Setenv("MQTT_ENABLED", "true")
	assert.True(t, Lookup("MQTT_ENABLED", false, Bool).Value)

	t.Setenv("MQTT_ENABLED", "yes")
	got := Lookup("MQTT_ENABLED", false, Bool)
	assert.False(t, got.Value)
	assert.Contains(t, got.Warning, "expected true or false")
}

func TestLoader_RecordsFallbacks(t *testing.T) {
	t.Setenv("SENSOR_SCHEDULE", "whenever")
	t.Setenv("WORKER_TIMEZONE", "Asia/Tokyo")

	reg := prometheus.NewRegistry()
	m := NewMetricsWith(reg, "farm_test")
	l := NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)), m)

	sched := Get(l, "sensor_schedule", "SENSOR_SCHEDULE", "@every 3s", String, CronSchedule)
	tz := Get(l, "timezone", "WORKER_TIMEZONE", "UTC", String, Timezone)
	l.Finish()

	assert.Equal(t, "@every 3s", sched)
	assert.Equal(t, "Asia/Tokyo", tz)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("sensor_schedule")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("timezone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))
	assert.Greater(t, testutil.ToFloat64(m.LoadedAt), 0.0)

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"farm_test_config_fallbacks_total",
		"farm_test_config_fallback_active",
		"farm_test_config_load_timestamp",
	}, names)
}

func TestLoader_NoFallback(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry(), "clean")
	l := NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)), m)

	_ = Get(l, "timezone", "AGRI_UNSET_TZ", "UTC", String, Timezone)
	l.Finish()

	assert.Equal(t, 0.0, testutil.ToFloat64(m.FallbackActive))
}
