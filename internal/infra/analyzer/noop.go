package analyzer

import (
	"context"
	"fmt"
)

// NoOp is used when no provider API key is configured. Every call fails
// with ErrProviderDisabled.
type NoOp struct{}

// NewNoOp creates a new NoOp provider.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Name implements Provider.
func (n *NoOp) Name() string { return "noop" }

// Generate implements Provider.
func (n *NoOp) Generate(_ context.Context, req Request) (string, error) {
	return "", fmt.Errorf("%s analysis: %w", req.Kind, ErrProviderDisabled)
}
