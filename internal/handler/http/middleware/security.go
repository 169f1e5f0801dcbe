package middleware

import (
	"net/http"

	envcfg "agrisense/pkg/config"
)

// SecurityHeaders sets the static hardening headers and, when enabled, the
// Content-Security-Policy (or its report-only variant).
func SecurityHeaders(csp *envcfg.CSPConfig) func(http.Handler) http.Handler {
	cspHeader, cspValue := "", ""
	if csp != nil && csp.Enabled && csp.Policy != "" {
		cspHeader, cspValue = "Content-Security-Policy", csp.Policy
		if csp.ReportOnly {
			cspHeader = "Content-Security-Policy-Report-Only"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			if r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			if cspHeader != "" {
				h.Set(cspHeader, cspValue)
			}
			next.ServeHTTP(w, r)
		})
	}
}
