package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agrisense/internal/handler/http/respond"
	"agrisense/internal/resilience/circuitbreaker"
	"agrisense/internal/resilience/retry"
)

// Options configures a provider. Zero values fall back to the provider's
// defaults.
type Options struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int

	// Retry and Breaker override the AI presets (tests use short delays).
	Retry   *retry.Config
	Breaker *circuitbreaker.Config

	Metrics MetricsRecorder
}

// invoker runs provider calls through retry, circuit breaker, logging and metrics.
type invoker struct {
	provider    string
	model       string
	timeout     time.Duration
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	metrics     MetricsRecorder
}

func newInvoker(provider string, opts Options, breakerDefault circuitbreaker.Config) *invoker {
	inv := &invoker{
		provider:    provider,
		model:       opts.Model,
		timeout:     opts.Timeout,
		retryConfig: retry.AIAPIConfig(),
		metrics:     opts.Metrics,
	}
	if opts.Retry != nil {
		inv.retryConfig = *opts.Retry
	}
	if opts.Breaker != nil {
		breakerDefault = *opts.Breaker
	}
	inv.breaker = circuitbreaker.New(breakerDefault)
	if inv.timeout <= 0 {
		inv.timeout = 60 * time.Second
	}
	if inv.metrics == nil {
		inv.metrics = NewPrometheusMetrics()
	}
	return inv
}

// call executes fn with the configured resilience policy. fn must translate
// upstream HTTP failures with retry.StatusError so that 429/5xx are retried
// and 4xx are not.
func (i *invoker) call(ctx context.Context, req Request, fn func(ctx context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	requestID := uuid.New().String()
	logger := slog.With(
		slog.String("request_id", requestID),
		slog.String("provider", i.provider),
		slog.String("model", i.model),
		slog.String("kind", string(req.Kind)))

	imageBytes := 0
	if req.Image != nil {
		imageBytes = len(req.Image.Data)
	}
	logger.InfoContext(ctx, "Starting analysis",
		slog.Int("prompt_length", len(req.Prompt)),
		slog.Int("image_bytes", imageBytes))

	start := time.Now()
	var result string
	err := retry.WithBackoff(ctx, i.retryConfig, func() error {
		return i.breaker.Run(func() error {
			text, err := fn(ctx)
			if err != nil {
				return err
			}
			result = text
			return nil
		})
	})
	duration := time.Since(start)

	if err != nil {
		status := statusError
		if circuitbreaker.IsRejected(err) {
			status = statusRejected
			logger.WarnContext(ctx, "analysis rejected, circuit breaker open",
				slog.String("state", i.breaker.State().String()))
			err = fmt.Errorf("%s: %w", i.provider, ErrProviderUnavailable)
		} else if errors.Is(err, ErrEmptyResponse) {
			status = statusEmpty
		}
		i.metrics.RecordRequest(i.provider, req.Kind, status, duration)
		logger.ErrorContext(ctx, "Analysis failed",
			slog.Duration("duration", duration),
			slog.String("error", respond.SanitizeError(err)))
		return "", fmt.Errorf("%s analyze failed: %w", i.provider, err)
	}

	i.metrics.RecordRequest(i.provider, req.Kind, statusSuccess, duration)
	i.metrics.RecordResponseSize(i.provider, req.Kind, len(result))
	logger.InfoContext(ctx, "Analysis completed",
		slog.Int("response_length", len(result)),
		slog.Duration("duration", duration))
	return result, nil
}
