package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"agrisense/internal/handler/http/requestid"
)

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a JSON logger on stdout at the LOG_LEVEL level.
func NewLogger() *slog.Logger {
	return newJSONLogger(os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// NewTextLogger is NewLogger with human-readable output, used by farmctl.
func NewTextLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(os.Getenv("LOG_LEVEL")),
	}))
}

// Init creates the JSON logger and installs it as the slog default.
func Init() *slog.Logger {
	logger := NewLogger()
	slog.SetDefault(logger)
	return logger
}

func newJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		// debug 時のみ呼び出し元を出力
		AddSource: level <= slog.LevelDebug,
	}))
}

// WithRequestID returns logger annotated with the request ID in ctx, if any.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With(slog.String("request_id", reqID))
}

// FromContext returns the logger stored by WithLogger, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
