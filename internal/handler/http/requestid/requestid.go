// Package requestid propagates a per-request correlation ID through
// contexts, response headers and logs.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDKey is the context key holding the request ID.
	RequestIDKey contextKey = "request_id"

	// RequestIDHeader is read from requests and echoed on responses.
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLength = 128
)

// FromContext returns the request ID, or "" when none is set.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// New returns a fresh random request ID.
func New() string {
	return uuid.NewString()
}

// Middleware reuses a well-formed X-Request-ID from the client and
// generates one otherwise.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !valid(id) {
			id = New()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// valid accepts printable ASCII only so client IDs cannot inject log lines.
func valid(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
