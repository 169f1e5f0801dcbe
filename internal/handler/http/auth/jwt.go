package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims identifies an authenticated user.
type Claims struct {
	Subject string
	Role    string
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewIssuer returns an issuer for secret. Tokens live for expiry.
func NewIssuer(secret []byte, expiry time.Duration) *Issuer {
	return &Issuer{secret: secret, expiry: expiry, now: time.Now}
}

// Issue signs a token carrying sub, role and exp.
func (i *Issuer) Issue(subject, role string) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  i.now().Unix(),
		"exp":  i.now().Add(i.expiry).Unix(),
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseHeader verifies an "Authorization: Bearer <token>" value.
func (i *Issuer) ParseHeader(authz string) (Claims, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return Claims{}, ErrMissingToken
	}
	return i.Parse(strings.TrimSpace(strings.TrimPrefix(authz, prefix)))
}

// Parse verifies the signature, algorithm and expiry of a raw token.
func (i *Issuer) Parse(raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{Subject: sub, Role: role}, nil
}
