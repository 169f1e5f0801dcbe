package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPExtractor resolves the client address a request is attributed to.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor uses the TCP peer address only. It cannot be spoofed
// and is the default when the server is not behind a proxy.
type RemoteAddrExtractor struct{}

func (RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return hostOf(r.RemoteAddr)
}

// TrustedProxyExtractor reads X-Forwarded-For, then X-Real-IP, but only when
// the peer is one of Proxies. Headers from anyone else are ignored.
type TrustedProxyExtractor struct {
	Proxies []netip.Prefix
}

// NewIPExtractor picks the extractor for the rate limit configuration.
func NewIPExtractor(trustProxy bool, proxies []netip.Prefix) IPExtractor {
	if trustProxy && len(proxies) > 0 {
		return TrustedProxyExtractor{Proxies: proxies}
	}
	return RemoteAddrExtractor{}
}

func (e TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	peer, err := hostOf(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	if !e.trusted(peer) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			slog.Warn("untrusted peer sent X-Forwarded-For",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff))
		}
		return peer, nil
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String(), nil
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String(), nil
	}
	return peer, nil
}

func (e TrustedProxyExtractor) trusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range e.Proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// hostOf strips the port from "ip:port" and "[v6]:port"; a bare IP is
// accepted as is.
func hostOf(addr string) (string, error) {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host, nil
	}
	if ip := net.ParseIP(strings.Trim(addr, "[]")); ip != nil {
		return ip.String(), nil
	}
	return "", fmt.Errorf("invalid address format: %q", addr)
}
