package middleware

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"agrisense/internal/handler/http/pathutil"
	"agrisense/internal/handler/http/respond"
	envcfg "agrisense/pkg/config"
)

var rateLimitRejections = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rate_limit_rejections_total",
		Help: "Requests rejected by the per-IP rate limiter",
	},
	[]string{"path"},
)

// IPRateLimiter is a token bucket per client IP. Buckets live in a
// go-cache keyed by IP and expire once a client has been idle for the
// configured TTL, which bounds memory under address churn.
type IPRateLimiter struct {
	limit     rate.Limit
	burst     int
	buckets   *cache.Cache
	extractor IPExtractor
	now       func() time.Time
}

// NewIPRateLimiter builds a limiter from configuration. A nil extractor
// means RemoteAddrExtractor.
func NewIPRateLimiter(cfg envcfg.RateLimitConfig, extractor IPExtractor) *IPRateLimiter {
	if extractor == nil {
		extractor = RemoteAddrExtractor{}
	}
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &IPRateLimiter{
		limit:     rate.Limit(float64(cfg.RequestsPerMinute) / 60),
		burst:     cfg.Burst,
		buckets:   cache.New(ttl, ttl),
		extractor: extractor,
		now:       time.Now,
	}
}

func (l *IPRateLimiter) bucket(ip string) *rate.Limiter {
	if v, ok := l.buckets.Get(ip); ok {
		lim := v.(*rate.Limiter)
		l.buckets.SetDefault(ip, lim) // idle TTL を延長
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.buckets.Add(ip, lim, cache.DefaultExpiration); err != nil {
		// 同時に別リクエストが登録した
		if v, ok := l.buckets.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Allow reports whether ip may proceed now and, if not, how long to wait.
func (l *IPRateLimiter) Allow(ip string) (bool, time.Duration) {
	now := l.now()
	r := l.bucket(ip).ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	delay := r.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	r.CancelAt(now)
	return false, delay
}

// ActiveClients is the number of buckets currently tracked.
func (l *IPRateLimiter) ActiveClients() int {
	return l.buckets.ItemCount()
}

// Middleware answers 429 with Retry-After once a client's bucket is empty.
// A request whose address cannot be resolved is let through.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := l.extractor.ExtractIP(r)
		if err != nil {
			slog.WarnContext(r.Context(), "rate limit: cannot resolve client ip",
				slog.String("remote_addr", r.RemoteAddr),
				slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}

		ok, wait := l.Allow(ip)
		if !ok {
			rateLimitRejections.WithLabelValues(pathutil.NormalizePath(r.URL.Path)).Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			respond.SafeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
