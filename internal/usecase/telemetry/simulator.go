package telemetry

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"agrisense/internal/domain/entity"
)

// Starting values for a freshly booted sensor array.
const (
	startTemperature = 24.0
	startHumidity    = 65.0
	startMoisture    = 42.0
)

// Maximum change per step.
const (
	stepTemperature = 0.25
	stepHumidity    = 1.0
	stepMoisture    = 0.75
)

// Temperature is kept inside a plausible field range.
const (
	minTemperature = -10.0
	maxTemperature = 50.0
)

// Simulator produces a bounded random walk standing in for real field sensors.
// It is safe for concurrent use.
type Simulator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	now  func() time.Time
	last entity.SensorReading
}

// NewSimulator returns a simulator seeded from the clock.
func NewSimulator() *Simulator {
	// #nosec G404 -- simulated sensor noise
	return NewSimulatorWithRand(rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
}

// NewSimulatorWithRand returns a simulator driven by rng and now.
func NewSimulatorWithRand(rng *rand.Rand, now func() time.Time) *Simulator {
	return &Simulator{
		rng: rng,
		now: now,
		last: entity.SensorReading{
			Temperature: startTemperature,
			Humidity:    startHumidity,
			Moisture:    startMoisture,
		},
	}
}

// Next advances the walk one step and returns the new reading.
func (s *Simulator) Next() entity.SensorReading {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last.Temperature = round1(clamp(s.last.Temperature+s.delta(stepTemperature), minTemperature, maxTemperature))
	s.last.Humidity = round1(clamp(s.last.Humidity+s.delta(stepHumidity), 0, 100))
	s.last.Moisture = round1(clamp(s.last.Moisture+s.delta(stepMoisture), 0, 100))
	s.last.RecordedAt = s.now().UTC()
	return s.last
}

// Current returns the last reading without advancing.
func (s *Simulator) Current() entity.SensorReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Resume continues the walk from r, typically the last persisted reading.
func (s *Simulator) Resume(r entity.SensorReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last.Temperature = r.Temperature
	s.last.Humidity = r.Humidity
	s.last.Moisture = r.Moisture
}

// delta returns a uniform value in [-step, step).
func (s *Simulator) delta(step float64) float64 {
	return (s.rng.Float64()*2 - 1) * step
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
