package analyzer

import (
	"context"
	"fmt"

	"agrisense/internal/config"
)

// New builds the provider selected by cfg.
func New(ctx context.Context, cfg *config.AnalyzerConfig) (Provider, error) {
	opts := Options{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		MaxTokens: cfg.MaxTokens,
	}
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(ctx, opts)
	case config.ProviderClaude:
		return NewClaude(opts), nil
	case config.ProviderOpenAI:
		return NewOpenAI(opts), nil
	case config.ProviderNoop, "":
		return NewNoOp(), nil
	default:
		return nil, fmt.Errorf("unknown analyzer provider %q", cfg.Provider)
	}
}
