package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"agrisense/internal/handler/http/requestid"
	"agrisense/internal/handler/http/respond"
)

type ctxKey string

const ctxClaims ctxKey = "claims"

// ClaimsFromContext returns the caller's claims on authenticated routes.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(ctxClaims).(Claims)
	return c, ok
}

// Authz enforces RequiredAccess on every request. A missing or invalid
// token is 401, a valid token with too little privilege is 403.
func Authz(issuer *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			access := RequiredAccess(r.Method, r.URL.Path)
			if access == AccessPublic {
				recordAuthz(access, outcomeAllowed, start)
				next.ServeHTTP(w, r)
				return
			}

			claims, err := issuer.ParseHeader(r.Header.Get("Authorization"))
			if err != nil {
				recordAuthz(access, outcomeUnauthorized, start)
				respond.SafeError(w, http.StatusUnauthorized, fmt.Errorf("unauthorized: %w", err))
				return
			}
			if !Allowed(claims.Role, access) {
				recordAuthz(access, outcomeForbidden, start)
				slog.Warn("forbidden access attempt",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("user", claims.Subject),
					slog.String("role", claims.Role),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("required", access.String()))
				respond.SafeError(w, http.StatusForbidden, errors.New("forbidden: insufficient role"))
				return
			}
			recordAuthz(access, outcomeAllowed, start)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxClaims, claims)))
		})
	}
}
