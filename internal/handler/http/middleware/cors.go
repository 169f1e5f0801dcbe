// Package middleware holds the edge middleware of the API server: CORS,
// client IP extraction, per-IP rate limiting and security headers.
package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	envcfg "agrisense/pkg/config"
)

// CORSConfig holds the CORS policy.
type CORSConfig struct {
	// AllowedOrigins is an exact-match whitelist. "*" allows any origin,
	// echoed back so credentials keep working.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string

	// MaxAge is how long browsers may cache a preflight, in seconds.
	MaxAge int
}

// DefaultCORSOrigins is the storefront dev server.
var DefaultCORSOrigins = []string{"http://localhost:5173"}

// LoadCORSConfig reads CORS_ALLOWED_ORIGINS, CORS_ALLOWED_METHODS,
// CORS_ALLOWED_HEADERS and CORS_MAX_AGE. Malformed origins are dropped
// with a warning.
func LoadCORSConfig() CORSConfig {
	cfg := CORSConfig{
		AllowedMethods: envcfg.GetEnvStringList("CORS_ALLOWED_METHODS",
			[]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders: envcfg.GetEnvStringList("CORS_ALLOWED_HEADERS",
			[]string{"Content-Type", "Authorization", "X-Request-ID"}),
		ExposedHeaders: []string{"X-Request-ID", "X-Trace-Id", "Location", "Retry-After"},
		MaxAge:         envcfg.GetEnvInt("CORS_MAX_AGE", 86400),
	}
	for _, o := range envcfg.GetEnvStringList("CORS_ALLOWED_ORIGINS", DefaultCORSOrigins) {
		if o == "*" || validOrigin(o) {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimRight(o, "/"))
			continue
		}
		slog.Warn("CORS: ignoring malformed origin", slog.String("origin", o))
	}
	return cfg
}

func validOrigin(o string) bool {
	u, err := url.Parse(o)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" &&
		(u.Path == "" || u.Path == "/") && u.RawQuery == ""
}

func (c CORSConfig) allowed(origin string) bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// CORS sets the CORS headers for whitelisted origins and answers their
// preflights with 204. Requests from other origins pass through without
// CORS headers, so the browser blocks the response.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")

			if !cfg.allowed(origin) {
				slog.Debug("CORS: origin not allowed",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			if exposed != "" {
				w.Header().Set("Access-Control-Expose-Headers", exposed)
			}
			next.ServeHTTP(w, r)
		})
	}
}
