// Package circuitbreaker stops calling an upstream (AI provider, webhook,
// MQTT broker) once it keeps failing, and probes it again after a cool-down.
// It wraps github.com/sony/gobreaker and exports each breaker's state as a
// Prometheus gauge.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// stateGauge is 0 closed, 1 half-open, 2 open.
var stateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "circuit_breaker_state",
	Help: "Circuit breaker state per upstream (0 closed, 1 half-open, 2 open)",
}, []string{"name"})

// Config describes when a breaker trips and how it recovers.
type Config struct {
	Name string

	// MaxRequests is how many probes are let through while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts. Zero never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// The breaker trips when at least MinRequests were counted and the
	// failure ratio reaches FailureThreshold.
	FailureThreshold float64
	MinRequests      uint32
}

func aiAPIConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// GeminiAPIConfig returns configuration for Gemini generateContent calls.
func GeminiAPIConfig() Config { return aiAPIConfig("gemini-api") }

// ClaudeAPIConfig returns configuration for Claude Messages calls.
func ClaudeAPIConfig() Config { return aiAPIConfig("claude-api") }

// OpenAIAPIConfig returns configuration for OpenAI chat completion calls.
func OpenAIAPIConfig() Config { return aiAPIConfig("openai-api") }

// WebhookConfig trips quickly and stays open for five minutes; a missed
// low-stock message is cheaper than hammering a broken webhook.
func WebhookConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          5 * time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}
}

// MQTTConfig is sized for a reading every few seconds.
func MQTTConfig() Config {
	return Config{
		Name:             "mqtt-publish",
		MaxRequests:      2,
		Interval:         2 * time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      10,
	}
}

// CircuitBreaker guards calls to one upstream.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

func New(cfg Config) *CircuitBreaker {
	stateGauge.WithLabelValues(cfg.Name).Set(stateValue(gobreaker.StateClosed))
	return &CircuitBreaker{
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.Requests >= cfg.MinRequests &&
					float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				stateGauge.WithLabelValues(name).Set(stateValue(to))
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Run calls fn unless the breaker is open. A rejected call returns an error
// for which IsRejected is true and fn is not invoked.
func (cb *CircuitBreaker) Run(fn func() error) error {
	_, err := cb.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

func (cb *CircuitBreaker) State() gobreaker.State { return cb.breaker.State() }

func (cb *CircuitBreaker) Name() string { return cb.name }

func (cb *CircuitBreaker) IsOpen() bool { return cb.breaker.State() == gobreaker.StateOpen }

// IsRejected reports whether err came from the breaker refusing the call
// (open, or half-open with its probe quota used up) rather than from fn.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
