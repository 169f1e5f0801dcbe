package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	envcfg "agrisense/pkg/config"
)

func TestSecurityHeaders(t *testing.T) {
	csp := &envcfg.CSPConfig{Enabled: true, Policy: envcfg.DefaultCSPPolicy}
	rec := httptest.NewRecorder()
	SecurityHeaders(csp)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, envcfg.DefaultCSPPolicy, rec.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_ReportOnlyAndTLS(t *testing.T) {
	csp := &envcfg.CSPConfig{Enabled: true, ReportOnly: true, Policy: "default-src 'self'"}
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.TLS = &tls.ConnectionState{}
	rec := httptest.NewRecorder()
	SecurityHeaders(csp)(okHandler()).ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy-Report-Only"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=")
}

func TestSecurityHeaders_CSPDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(&envcfg.CSPConfig{Enabled: false, Policy: "x"})(okHandler()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))

	rec = httptest.NewRecorder()
	SecurityHeaders(nil)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
