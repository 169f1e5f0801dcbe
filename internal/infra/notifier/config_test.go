package notifier

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestLoadDiscordConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name        string
		enabled     string
		url         string
		wantEnabled bool
	}{
		{"TC-1: disabled", "false", "https://discord.com/api/webhooks/1/abc", false},
		{"TC-2: valid", "true", "https://discord.com/api/webhooks/1/abc", true},
		{"TC-3: empty url", "true", "", false},
		{"TC-4: http scheme", "true", "http://discord.com/api/webhooks/1/abc", false},
		{"TC-5: wrong host", "true", "https://evil.example/api/webhooks/1/abc", false},
		{"TC-6: wrong path", "true", "https://discord.com/webhooks/1/abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISCORD_ENABLED", tt.enabled)
			t.Setenv("DISCORD_WEBHOOK_URL", tt.url)
			t.Setenv("DISCORD_TIMEOUT", "")

			cfg := LoadDiscordConfig(logger)
			if cfg.Enabled != tt.wantEnabled {
				t.Fatalf("Enabled = %v, want %v", cfg.Enabled, tt.wantEnabled)
			}
			if tt.wantEnabled && cfg.Timeout != 30*time.Second {
				t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
			}
		})
	}
}

func TestLoadSlackConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Setenv("SLACK_ENABLED", "true")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T0/B0/xyz")
	t.Setenv("SLACK_TIMEOUT", "5s")
	cfg := LoadSlackConfig(logger)
	if !cfg.Enabled || cfg.Timeout != 5*time.Second {
		t.Errorf("unexpected config: enabled=%v timeout=%v", cfg.Enabled, cfg.Timeout)
	}

	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/other/T0")
	if LoadSlackConfig(logger).Enabled {
		t.Error("expected slack to be disabled for a non-/services/ path")
	}
}
