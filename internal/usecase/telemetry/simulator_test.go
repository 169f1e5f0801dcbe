package telemetry

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2026, 5, 1, 6, 30, 0, 0, time.UTC)

func newTestSimulator(seed int64) *Simulator {
	return NewSimulatorWithRand(rand.New(rand.NewSource(seed)), func() time.Time { return fixedNow })
}

func TestSimulator_StartValues(t *testing.T) {
	s := newTestSimulator(1)
	cur := s.Current()
	assert.Equal(t, 24.0, cur.Temperature)
	assert.Equal(t, 65.0, cur.Humidity)
	assert.Equal(t, 42.0, cur.Moisture)
}

func TestSimulator_StepBounds(t *testing.T) {
	s := newTestSimulator(42)
	prev := s.Current()

	for range 2000 {
		r := s.Next()

		// 丸めで最大 0.05 ずれる
		assert.LessOrEqual(t, math.Abs(r.Temperature-prev.Temperature), stepTemperature+0.051)
		assert.LessOrEqual(t, math.Abs(r.Humidity-prev.Humidity), stepHumidity+0.051)
		assert.LessOrEqual(t, math.Abs(r.Moisture-prev.Moisture), stepMoisture+0.051)

		assert.GreaterOrEqual(t, r.Humidity, 0.0)
		assert.LessOrEqual(t, r.Humidity, 100.0)
		assert.GreaterOrEqual(t, r.Moisture, 0.0)
		assert.LessOrEqual(t, r.Moisture, 100.0)

		assert.InDelta(t, r.Temperature, round1(r.Temperature), 1e-9)
		assert.Equal(t, fixedNow, r.RecordedAt)
		prev = r
	}
}

func TestSimulator_Deterministic(t *testing.T) {
	a := newTestSimulator(7)
	b := newTestSimulator(7)
	for range 50 {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestSimulator_Resume(t *testing.T) {
	s := newTestSimulator(3)
	s.Resume(entityReading(30, 99.8, 0.2))

	cur := s.Current()
	assert.Equal(t, 30.0, cur.Temperature)

	r := s.Next()
	assert.LessOrEqual(t, r.Humidity, 100.0)
	assert.GreaterOrEqual(t, r.Moisture, 0.0)
}

func TestClampRound(t *testing.T) {
	assert.Equal(t, 100.0, clamp(100.4, 0, 100))
	assert.Equal(t, 0.0, clamp(-0.1, 0, 100))
	assert.Equal(t, 42.4, round1(42.44))
	assert.Equal(t, 42.5, round1(42.45000001))
}
