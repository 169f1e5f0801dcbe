// Package retry re-runs failed upstream calls (AI providers, webhooks) with
// exponential backoff and jitter. Only transient failures are retried: network
// timeouts, refused or reset connections, 408, 429 and 5xx.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config controls the backoff schedule.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// JitterFraction adds up to this fraction of the delay, 0 to 1.
	JitterFraction float64
}

// AIAPIConfig is used for generative-AI calls. Each attempt is billed, so
// the schedule is short.
func AIAPIConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   2 * time.Second,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// WebhookConfig is used for Discord and Slack delivery.
func WebhookConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

// RetryAfterer is implemented by errors that carry a server-requested wait,
// such as a 429 with Retry-After. The wait replaces the backoff delay when
// it is longer.
type RetryAfterer interface {
	RetryAfterDelay() time.Duration
}

// WithBackoff calls fn until it succeeds, returns a non-retryable error, the
// attempts run out or ctx is done.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				slog.Info("upstream call recovered", slog.Int("attempt", attempt))
			}
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			return fmt.Errorf("gave up after %d attempts: %w", cfg.MaxAttempts, err)
		}

		wait := withJitter(delay, cfg.JitterFraction)
		var ra RetryAfterer
		if errors.As(err, &ra) && ra.RetryAfterDelay() > wait {
			wait = ra.RetryAfterDelay()
		}
		slog.Warn("upstream call failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("wait", wait),
			slog.Any("error", err))

		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}

		delay = min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxDelay)
	}
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch code := httpErr.StatusCode; {
		case code >= 500 && code < 600:
			return true
		case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT, syscall.ENETUNREACH} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// HTTPError is an upstream response with a non-success status.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// StatusError wraps an upstream status code so IsRetryable can classify it.
// cause is kept for errors.Is / errors.As and may be nil.
func StatusError(code int, message string, cause error) error {
	e := &HTTPError{StatusCode: code, Message: message}
	if cause == nil {
		return e
	}
	return fmt.Errorf("%w: %w", e, cause)
}

func withJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return d
	}
	fraction = min(fraction, 1.0)
	// #nosec G404 -- jitter does not need a cryptographic source
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}
