// Package config reads component settings from the environment fail-open:
// a malformed or out-of-range value is logged, counted and replaced by its
// default, so a bad deploy degrades the process instead of stopping it.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Parser turns a raw env value into T.
type Parser[T any] func(raw string) (T, error)

func String(raw string) (string, error) { return raw, nil }

func Int(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("not an integer")
	}
	return n, nil
}

// Duration accepts Go duration syntax ("45s", "1h30m").
func Duration(raw string) (time.Duration, error) { return time.ParseDuration(raw) }

func Bool(raw string) (bool, error) {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("expected true or false")
	}
	return b, nil
}

// Result is the outcome of one lookup. Warning is set only when a present
// value was rejected and Value holds the default.
type Result[T any] struct {
	Value   T
	Warning string
}

func (r Result[T]) FellBack() bool { return r.Warning != "" }

// Lookup reads key, parses it and runs every rule. Unset or empty keys yield
// def without a warning.
func Lookup[T any](key string, def T, parse Parser[T], rules ...Rule[T]) Result[T] {
	raw := os.Getenv(key)
	if raw == "" {
		return Result[T]{Value: def}
	}
	v, err := parse(raw)
	if err == nil {
		for _, rule := range rules {
			if err = rule(v); err != nil {
				break
			}
		}
	}
	if err != nil {
		return Result[T]{
			Value:   def,
			Warning: fmt.Sprintf("%s=%q rejected (%v), using %v", key, raw, err, def),
		}
	}
	return Result[T]{Value: v}
}

// Loader collects the fallbacks of one component's settings.
type Loader struct {
	logger   *slog.Logger
	metrics  *Metrics
	fellBack bool
}

func NewLoader(logger *slog.Logger, metrics *Metrics) *Loader {
	return &Loader{logger: logger, metrics: metrics}
}

// Get looks key up and records a fallback under field.
func Get[T any](l *Loader, field, key string, def T, parse Parser[T], rules ...Rule[T]) T {
	r := Lookup(key, def, parse, rules...)
	if r.FellBack() {
		l.fellBack = true
		l.metrics.Fallbacks.WithLabelValues(field).Inc()
		l.logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", r.Warning))
	}
	return r.Value
}

// Finish publishes whether any fallback is in effect and stamps the load time.
func (l *Loader) Finish() {
	if l.fellBack {
		l.metrics.FallbackActive.Set(1)
	} else {
		l.metrics.FallbackActive.Set(0)
	}
	l.metrics.LoadedAt.SetToCurrentTime()
}
