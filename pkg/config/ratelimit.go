package config

import (
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"
)

// RateLimitConfig configures the per-IP token bucket in front of the
// analysis endpoints.
type RateLimitConfig struct {
	Enabled bool

	// RequestsPerMinute is the sustained rate per client IP.
	RequestsPerMinute int

	// Burst is how many requests a fresh client may send at once.
	Burst int

	// IdleTTL drops the bucket of a client that has been quiet this long.
	IdleTTL time.Duration

	// TrustProxy enables X-Forwarded-For / X-Real-IP when the peer is one
	// of TrustedProxies.
	TrustProxy     bool
	TrustedProxies []netip.Prefix
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables. Out-of-range numbers
// fall back to defaults with a warning; a malformed proxy list is an error
// because silently trusting nobody would rate limit the proxy itself.
//
// Environment variables:
//   - RATE_LIMIT_ENABLED (default: true)
//   - RATE_LIMIT_RPM (default: 10)
//   - RATE_LIMIT_BURST (default: 5)
//   - RATE_LIMIT_IDLE_TTL (default: 10m)
//   - RATE_LIMIT_TRUST_PROXY (default: false)
//   - RATE_LIMIT_TRUSTED_PROXIES: comma-separated IPs or CIDRs
func LoadRateLimitConfig() (*RateLimitConfig, error) {
	cfg := &RateLimitConfig{
		Enabled:           GetEnvBool("RATE_LIMIT_ENABLED", true),
		RequestsPerMinute: GetEnvInt("RATE_LIMIT_RPM", 10),
		Burst:             GetEnvInt("RATE_LIMIT_BURST", 5),
		IdleTTL:           GetEnvDuration("RATE_LIMIT_IDLE_TTL", 10*time.Minute),
		TrustProxy:        GetEnvBool("RATE_LIMIT_TRUST_PROXY", false),
	}

	if cfg.RequestsPerMinute <= 0 {
		slog.Warn("invalid RATE_LIMIT_RPM, using default",
			slog.Int("value", cfg.RequestsPerMinute),
			slog.Int("default", 10))
		cfg.RequestsPerMinute = 10
	}
	if cfg.Burst <= 0 {
		slog.Warn("invalid RATE_LIMIT_BURST, using default",
			slog.Int("value", cfg.Burst),
			slog.Int("default", 5))
		cfg.Burst = 5
	}
	if cfg.IdleTTL < time.Minute || cfg.IdleTTL > 24*time.Hour {
		slog.Warn("RATE_LIMIT_IDLE_TTL must be between 1m and 24h, using default",
			slog.String("value", cfg.IdleTTL.String()),
			slog.String("default", "10m"))
		cfg.IdleTTL = 10 * time.Minute
	}

	if !cfg.TrustProxy {
		return cfg, nil
	}
	proxies := GetEnvStringList("RATE_LIMIT_TRUSTED_PROXIES", nil)
	if len(proxies) == 0 {
		return nil, fmt.Errorf("RATE_LIMIT_TRUST_PROXY is enabled but RATE_LIMIT_TRUSTED_PROXIES is empty")
	}
	prefixes, err := ParseTrustedProxies(proxies)
	if err != nil {
		return nil, err
	}
	cfg.TrustedProxies = prefixes
	return cfg, nil
}

// ParseTrustedProxies parses IPs and CIDRs. A bare IP becomes a /32 or /128.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if p, err := netip.ParsePrefix(e); err == nil {
			out = append(out, p.Masked())
			continue
		}
		ip, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("invalid IP or CIDR %q in trusted proxies", e)
		}
		out = append(out, netip.PrefixFrom(ip, ip.BitLen()))
	}
	return out, nil
}

// CSPConfig controls the Content-Security-Policy header.
type CSPConfig struct {
	Enabled    bool
	ReportOnly bool
	Policy     string
}

// DefaultCSPPolicy fits a JSON API: nothing may be loaded or framed.
const DefaultCSPPolicy = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"

// LoadCSPConfig reads CSP_ENABLED, CSP_REPORT_ONLY and CSP_POLICY.
func LoadCSPConfig() *CSPConfig {
	return &CSPConfig{
		Enabled:    GetEnvBool("CSP_ENABLED", true),
		ReportOnly: GetEnvBool("CSP_REPORT_ONLY", false),
		Policy:     GetEnvString("CSP_POLICY", DefaultCSPPolicy),
	}
}
