package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"agrisense/internal/resilience/retry"
)

// maxErrorBody caps how much of an error response is kept in the error message.
const maxErrorBody = 512

// RateLimitError is returned for a 429 answer. RetryAfter is how long the
// webhook asked us to wait.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// RetryAfterDelay makes retry.WithBackoff wait at least the server's window.
func (e *RateLimitError) RetryAfterDelay() time.Duration { return e.RetryAfter }

// webhook posts JSON payloads with a client-side token bucket and retry.
// Discord and Slack share it and differ only in payload shape.
type webhook struct {
	name       string
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      retry.Config
}

func newWebhook(name, url string, timeout time.Duration, perSecond float64, burst int) *webhook {
	return &webhook{
		name:       name,
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(perSecond), burst),
		retry:      retry.WebhookConfig(),
	}
}

// deliver waits for a rate-limit token and posts payload, retrying 5xx and
// 429 answers. A 429 sleeps for the server supplied retry-after first.
func (w *webhook) deliver(ctx context.Context, payload any) error {
	requestID := uuid.New().String()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	attempt := 0
	err = retry.WithBackoff(ctx, w.retry, func() error {
		attempt++
		err := w.post(ctx, body)
		var rl *RateLimitError
		if errors.As(err, &rl) {
			slog.Warn("webhook rate limited, backing off",
				slog.String("request_id", requestID),
				slog.String("channel", w.name),
				slog.Duration("retry_after", rl.RetryAfter),
				slog.Int("attempt", attempt))
		}
		return err
	})
	if err != nil {
		slog.Error("webhook notification failed",
			slog.String("request_id", requestID),
			slog.String("channel", w.name),
			slog.Int("attempts", attempt),
			slog.Any("error", err))
		return fmt.Errorf("%s notification failed: %w", w.name, err)
	}

	slog.Info("webhook notification sent",
		slog.String("request_id", requestID),
		slog.String("channel", w.name),
		slog.Int("attempts", attempt))
	return nil
}

func (w *webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return retry.StatusError(resp.StatusCode, w.name+" rate limit exceeded",
			&RateLimitError{RetryAfter: extractRetryAfter(resp, respBody)})
	default:
		return retry.StatusError(resp.StatusCode, fmt.Sprintf("%s webhook: %s", w.name, respBody), nil)
	}
}

// extractRetryAfter reads retry_after (seconds, possibly fractional) from a
// JSON body, then the Retry-After header. The default is 5s.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}
	if h := resp.Header.Get("Retry-After"); h != "" {
		if seconds, err := strconv.Atoi(h); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 5 * time.Second
}

// truncate shortens text to at most maxLen bytes without splitting a rune,
// appending suffix when it cuts.
func truncate(text string, maxLen int, suffix string) string {
	if len(text) <= maxLen {
		return text
	}
	cut := maxLen - len(suffix)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + suffix
}
