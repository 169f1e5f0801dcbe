package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	envcfg "agrisense/pkg/config"
)

// Analyzer provider names accepted by ANALYZER_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderNoop   = "noop"
)

// Default models per provider. The Gemini default matches the model the
// image analyses were tuned against.
const (
	DefaultGeminiModel = "gemini-3-flash-preview"
	DefaultClaudeModel = "claude-sonnet-4-5-20250929"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// AnalyzerConfig holds configuration for the generative-AI analyzer.
type AnalyzerConfig struct {
	// Provider is one of gemini, claude, openai or noop.
	// Empty means: the first provider with an API key, else noop.
	Provider string

	// Model overrides the provider default model.
	Model string

	// APIKey is the key for the selected provider.
	APIKey string

	// BaseURL overrides the provider endpoint (proxies, tests).
	BaseURL string

	// Timeout bounds a single provider call, retries included.
	Timeout time.Duration

	// MaxTokens caps the response length for providers that require it.
	MaxTokens int

	// CacheTTL is how long text analyses (crops, yield) are memoized.
	CacheTTL time.Duration

	// MaxImageBytes is the largest accepted image payload.
	MaxImageBytes int64

	// PromptsPath optionally replaces the embedded prompt catalog.
	PromptsPath string
}

// LoadAnalyzerConfig reads ANALYZER_* and provider key variables.
//
// Environment variables:
//   - ANALYZER_PROVIDER: gemini|claude|openai|noop (default: auto)
//   - GEMINI_API_KEY / ANTHROPIC_API_KEY / OPENAI_API_KEY
//   - ANALYZER_MODEL, ANALYZER_BASE_URL
//   - ANALYZER_TIMEOUT (default: 60s)
//   - ANALYZER_MAX_TOKENS (default: 2048)
//   - ANALYSIS_CACHE_TTL (default: 30m)
//   - ANALYZER_MAX_IMAGE_BYTES (default: 8 MiB)
//   - ANALYZER_PROMPTS_PATH
func LoadAnalyzerConfig() (*AnalyzerConfig, error) {
	keys := map[string]string{
		ProviderGemini: envcfg.GetEnvString("GEMINI_API_KEY", ""),
		ProviderClaude: envcfg.GetEnvString("ANTHROPIC_API_KEY", ""),
		ProviderOpenAI: envcfg.GetEnvString("OPENAI_API_KEY", ""),
	}

	provider := strings.ToLower(strings.TrimSpace(envcfg.GetEnvString("ANALYZER_PROVIDER", "")))
	if provider == "" {
		provider = ProviderNoop
		for _, p := range []string{ProviderGemini, ProviderClaude, ProviderOpenAI} {
			if keys[p] != "" {
				provider = p
				break
			}
		}
		if provider == ProviderNoop {
			slog.Warn("no analyzer API key configured, analysis endpoints are disabled")
		}
	}

	cfg := &AnalyzerConfig{
		Provider:      provider,
		Model:         envcfg.GetEnvString("ANALYZER_MODEL", ""),
		APIKey:        keys[provider],
		BaseURL:       envcfg.GetEnvString("ANALYZER_BASE_URL", ""),
		Timeout:       envcfg.GetEnvDuration("ANALYZER_TIMEOUT", 60*time.Second),
		MaxTokens:     envcfg.GetEnvInt("ANALYZER_MAX_TOKENS", 2048),
		CacheTTL:      envcfg.GetEnvDuration("ANALYSIS_CACHE_TTL", 30*time.Minute),
		MaxImageBytes: int64(envcfg.GetEnvInt("ANALYZER_MAX_IMAGE_BYTES", 8<<20)),
		PromptsPath:   envcfg.GetEnvString("ANALYZER_PROMPTS_PATH", ""),
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analyzer configuration: %w", err)
	}
	return cfg, nil
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return DefaultGeminiModel
	case ProviderClaude:
		return DefaultClaudeModel
	case ProviderOpenAI:
		return DefaultOpenAIModel
	default:
		return ""
	}
}

// Validate checks configuration correctness.
func (c *AnalyzerConfig) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderClaude, ProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("API key for provider %q is required", c.Provider)
		}
		if c.Model == "" {
			return fmt.Errorf("ANALYZER_MODEL cannot be empty")
		}
	case ProviderNoop:
	default:
		return fmt.Errorf("unknown ANALYZER_PROVIDER %q", c.Provider)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("ANALYZER_TIMEOUT must be positive")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("ANALYZER_MAX_TOKENS must be positive")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("ANALYSIS_CACHE_TTL cannot be negative")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("ANALYZER_MAX_IMAGE_BYTES must be positive")
	}
	return nil
}
