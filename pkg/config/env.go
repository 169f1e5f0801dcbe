// Package config holds the small environment getters shared by every
// binary. Malformed values never abort startup: the getter logs a warning
// and returns the default.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the variable, or defaultValue when unset or empty.
func GetEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvInt parses the variable as a base-10 int.
//
// Example:
//
//	port := GetEnvInt("WORKER_HEALTH_PORT", 9091)
func GetEnvInt(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", defaultValue))
		return defaultValue
	}
	return v
}

// GetEnvBool accepts the forms strconv.ParseBool does.
func GetEnvBool(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("invalid boolean value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Bool("default", defaultValue))
		return defaultValue
	}
	return v
}

// GetEnvFloat parses the variable with strconv.ParseFloat.
func GetEnvFloat(key string, defaultValue float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("invalid float value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Float64("default", defaultValue))
		return defaultValue
	}
	return v
}

// GetEnvDuration parses the variable with time.ParseDuration ("3s", "1h30m").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", defaultValue.String()),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return v
}

// GetEnvStringList splits a comma-separated variable, trimming entries and
// dropping empty ones. An empty result yields defaultValue.
//
// Example:
//
//	// CORS_ALLOWED_ORIGINS="http://localhost:5173, https://shop.example"
//	origins := GetEnvStringList("CORS_ALLOWED_ORIGINS", nil)
func GetEnvStringList(key string, defaultValue []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
