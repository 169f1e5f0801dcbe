package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"agrisense/internal/resilience/circuitbreaker"
	"agrisense/internal/resilience/retry"
)

// Gemini implements Provider with the Google Gen AI SDK. Responses are
// constrained with ResponseMIMEType application/json and a ResponseSchema.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
	inv       *invoker
}

// NewGemini creates a Gemini provider.
func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if opts.Model == "" {
		opts.Model = "gemini-3-flash-preview"
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	slog.Info("Initialized Gemini analyzer", slog.String("model", opts.Model))

	return &Gemini{
		client:    client,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		inv:       newInvoker("gemini", opts, circuitbreaker.GeminiAPIConfig()),
	}, nil
}

// Name implements Provider.
func (g *Gemini) Name() string { return "gemini" }

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	return g.inv.call(ctx, req, func(ctx context.Context) (string, error) {
		return g.doGenerate(ctx, req)
	})
}

func (g *Gemini) doGenerate(ctx context.Context, req Request) (string, error) {
	parts := make([]*genai.Part, 0, 2)
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema.Genai(),
	}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.maxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return "", geminiError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// geminiError maps SDK errors so retry can classify the HTTP status.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retry.StatusError(apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return retry.StatusError(apiErrPtr.Code, apiErrPtr.Message, err)
	}
	return fmt.Errorf("gemini api error: %w", err)
}
