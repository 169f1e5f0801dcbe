package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"

	envcfg "agrisense/pkg/config"

	authservice "agrisense/internal/service/auth"
)

// Account is a configured login.
type Account struct {
	Username string
	Password string
	Role     string
}

// MultiUserAuthProvider authenticates a fixed admin account and an
// optional viewer account.
type MultiUserAuthProvider struct {
	minPasswordLength int
	weakPasswords     []string
	accounts          []Account
}

// NewMultiUserAuthProvider validates accounts against the password policy.
// The admin account is mandatory; a viewer that fails the policy is dropped
// with a warning so the API still starts in admin-only mode.
func NewMultiUserAuthProvider(minPasswordLength int, weakPasswords []string, admin Account, viewer *Account, logger *slog.Logger) (*MultiUserAuthProvider, error) {
	if strings.TrimSpace(admin.Username) == "" {
		return nil, fmt.Errorf("admin credentials validation failed: ADMIN_USER must not be empty")
	}
	if err := CheckPassword(admin.Password, minPasswordLength, weakPasswords); err != nil {
		return nil, fmt.Errorf("admin credentials validation failed: ADMIN_USER_PASSWORD: %w", err)
	}
	admin.Role = RoleAdmin

	p := &MultiUserAuthProvider{
		minPasswordLength: minPasswordLength,
		weakPasswords:     weakPasswords,
		accounts:          []Account{admin},
	}

	switch {
	case viewer == nil || viewer.Username == "":
		logger.Info("viewer role not configured, running in admin-only mode")
	case viewer.Username == admin.Username:
		logger.Warn("VIEWER_USER cannot be the same as ADMIN_USER, disabling viewer role")
	default:
		if err := CheckPassword(viewer.Password, minPasswordLength, weakPasswords); err != nil {
			logger.Warn("VIEWER_USER_PASSWORD rejected, disabling viewer role", slog.String("reason", err.Error()))
			break
		}
		v := *viewer
		v.Role = RoleViewer
		p.accounts = append(p.accounts, v)
		logger.Info("viewer role configured", slog.String("user", v.Username))
	}
	return p, nil
}

// AccountsFromEnv reads ADMIN_USER, ADMIN_USER_PASSWORD, VIEWER_USER and VIEWER_USER_PASSWORD.
func AccountsFromEnv() (Account, *Account) {
	admin := Account{
		Username: envcfg.GetEnvString("ADMIN_USER", ""),
		Password: envcfg.GetEnvString("ADMIN_USER_PASSWORD", ""),
	}
	viewerUser := envcfg.GetEnvString("VIEWER_USER", "")
	if viewerUser == "" {
		return admin, nil
	}
	return admin, &Account{Username: viewerUser, Password: envcfg.GetEnvString("VIEWER_USER_PASSWORD", "")}
}

// ValidateCredentials compares against every account in constant time,
// without stopping at the first match.
func (p *MultiUserAuthProvider) ValidateCredentials(_ context.Context, creds authservice.Credentials) error {
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("credentials must not be empty")
	}
	matched := 0
	for _, a := range p.accounts {
		u := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(a.Username))
		pw := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(a.Password))
		matched |= u & pw
	}
	if matched != 1 {
		return fmt.Errorf("credentials do not match")
	}
	return nil
}

// IdentifyUser returns the role configured for username.
func (p *MultiUserAuthProvider) IdentifyUser(_ context.Context, username string) (string, error) {
	for _, a := range p.accounts {
		if subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1 {
			return a.Role, nil
		}
	}
	return "", fmt.Errorf("user not found")
}

func (p *MultiUserAuthProvider) GetRequirements() authservice.CredentialRequirements {
	return authservice.CredentialRequirements{
		MinPasswordLength: p.minPasswordLength,
		WeakPasswords:     p.weakPasswords,
	}
}

func (p *MultiUserAuthProvider) Name() string {
	return "multi-user"
}
