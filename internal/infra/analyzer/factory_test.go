package analyzer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/internal/config"
	"agrisense/internal/infra/analyzer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{config.ProviderGemini, "gemini", false},
		{config.ProviderClaude, "claude", false},
		{config.ProviderOpenAI, "openai", false},
		{config.ProviderNoop, "noop", false},
		{"mistral", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := analyzer.New(context.Background(), &config.AnalyzerConfig{
				Provider:  tt.provider,
				APIKey:    "k",
				Model:     config.DefaultModel(tt.provider),
				Timeout:   time.Second,
				MaxTokens: 256,
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}
