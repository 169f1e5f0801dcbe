// Package respond writes JSON responses and sanitizes errors before they
// reach clients.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// safeFragments mark error messages that may be shown to clients as-is.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"cannot be",
	"too long",
	"too short",
	"out of stock",
	"insufficient stock",
	"empty",
	"unknown",
	"unauthorized",
	"forbidden",
	"rate limit",
	"too large",
	"validation error",
}

// JSON writes v with status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// ヘッダ送信済みのためログのみ
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// SafeError writes {"error": msg}. Messages that look like validation
// errors pass through; anything else, and every 5xx, becomes
// "internal server error" with the masked detail logged.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	if code < 500 && isSafe(msg) {
		JSON(w, code, map[string]string{"error": msg})
		return
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

func isSafe(msg string) bool {
	lower := strings.ToLower(msg)
	for _, s := range safeFragments {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// AppError carries a user-facing message separate from the logged cause.
type AppError struct {
	UserMsg string
	Err     error
	Code    int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// WriteError is SafeError with AppError support: an AppError anywhere in
// the chain wins over code and its UserMsg is returned verbatim.
func WriteError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			slog.Default().Error("application error",
				slog.Int("code", appErr.Code),
				slog.String("user_message", appErr.UserMsg),
				slog.String("error", SanitizeError(appErr.Err)))
		}
		JSON(w, appErr.Code, map[string]string{"error": appErr.UserMsg})
		return
	}
	SafeError(w, code, err)
}
