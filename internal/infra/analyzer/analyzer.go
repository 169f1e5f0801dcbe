// Package analyzer sends one prompt (plus an optional image) to a
// generative-AI provider and returns the raw JSON text it answers with.
// Gemini is the default provider; Claude and OpenAI are drop-in
// alternatives, and NoOp is used when no API key is configured.
//
// Every real provider call goes through retry with backoff around a circuit
// breaker, and is logged and measured per call.
package analyzer

import (
	"context"
	"errors"
)

// Kind names the analysis a request belongs to. It is used for logging,
// metrics labels and prompt lookup.
type Kind string

const (
	KindSoil    Kind = "soil"
	KindDisease Kind = "disease"
	KindCrops   Kind = "crops"
	KindYield   Kind = "yield"
)

// Image is an inline image payload.
type Image struct {
	Data     []byte
	MIMEType string
}

// Request is one prompt/response exchange.
type Request struct {
	Kind   Kind
	Prompt string
	Image  *Image
	Schema *Schema
}

// Provider generates a JSON response for a request.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

var (
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("empty response from AI model")

	// ErrProviderUnavailable is returned while the provider's circuit breaker is open.
	ErrProviderUnavailable = errors.New("AI provider unavailable")

	// ErrProviderDisabled is returned by NoOp.
	ErrProviderDisabled = errors.New("AI provider not configured")
)
