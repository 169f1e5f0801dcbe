// Package auth holds the framework-agnostic authentication service.
// HTTP concerns (JWT, middleware) live in handler/http/auth.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCredentials is returned for any failed login. Callers must not
// reveal which part of the credentials was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is a login attempt.
type Credentials struct {
	Username string
	Password string
}

// CredentialRequirements describes the password policy a provider enforces.
type CredentialRequirements struct {
	MinPasswordLength int
	WeakPasswords     []string
}

// AuthProvider verifies credentials and maps users to roles.
type AuthProvider interface {
	ValidateCredentials(ctx context.Context, creds Credentials) error

	// IdentifyUser returns the role of a known user.
	IdentifyUser(ctx context.Context, username string) (string, error)

	GetRequirements() CredentialRequirements

	Name() string
}

// AuthService authenticates users through a provider.
type AuthService struct {
	provider AuthProvider
}

func NewAuthService(provider AuthProvider) *AuthService {
	return &AuthService{provider: provider}
}

// Authenticate validates creds and returns the user's role.
// Every failure is reported as ErrInvalidCredentials wrapping the cause.
func (s *AuthService) Authenticate(ctx context.Context, creds Credentials) (string, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := s.provider.ValidateCredentials(ctx, creds); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	role, err := s.provider.IdentifyUser(ctx, creds.Username)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return role, nil
}

func (s *AuthService) GetProvider() AuthProvider {
	return s.provider
}
