package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"agrisense/internal/handler/http/requestid"
	"agrisense/internal/handler/http/respond"
	authservice "agrisense/internal/service/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenHandler serves POST /auth/token.
func TokenHandler(svc *authservice.AuthService, issuer *Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := slog.With(slog.String("request_id", requestid.FromContext(r.Context())))

		fail := func(role string, code int, reason string, err error) {
			logger.Warn("authentication failed",
				slog.String("reason", reason),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			recordToken(role, reason, start)
			respond.SafeError(w, code, err)
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fail("unknown", http.StatusBadRequest, "invalid_request", errors.New("invalid request body"))
			return
		}

		role, err := svc.Authenticate(r.Context(), authservice.Credentials{Username: req.Email, Password: req.Password})
		if err != nil {
			fail("unknown", http.StatusUnauthorized, "invalid_credentials", authservice.ErrInvalidCredentials)
			return
		}

		token, err := issuer.Issue(req.Email, role)
		if err != nil {
			fail(role, http.StatusInternalServerError, "token_generation", err)
			return
		}

		logger.Info("authentication successful",
			slog.String("user_email", req.Email),
			slog.String("role", role),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		recordToken(role, "ok", start)

		respond.JSON(w, http.StatusOK, tokenResponse{
			Token:     token,
			Role:      role,
			ExpiresAt: issuer.now().Add(issuer.expiry).UTC(),
		})
	}
}
