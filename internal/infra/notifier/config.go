package notifier

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	envcfg "agrisense/pkg/config"
)

const defaultWebhookTimeout = 30 * time.Second

// LoadDiscordConfig reads DISCORD_ENABLED, DISCORD_WEBHOOK_URL and
// DISCORD_TIMEOUT. A malformed URL disables the channel instead of failing.
func LoadDiscordConfig(logger *slog.Logger) DiscordConfig {
	if !envcfg.GetEnvBool("DISCORD_ENABLED", false) {
		return DiscordConfig{}
	}
	raw := envcfg.GetEnvString("DISCORD_WEBHOOK_URL", "")
	if err := validateWebhookURL(raw, "discord.com", "/api/webhooks/"); err != nil {
		logger.Warn("Discord notifications disabled", slog.Any("error", err))
		return DiscordConfig{}
	}
	return DiscordConfig{
		Enabled:    true,
		WebhookURL: raw,
		Timeout:    envcfg.GetEnvDuration("DISCORD_TIMEOUT", defaultWebhookTimeout),
	}
}

// LoadSlackConfig reads SLACK_ENABLED, SLACK_WEBHOOK_URL and SLACK_TIMEOUT.
func LoadSlackConfig(logger *slog.Logger) SlackConfig {
	if !envcfg.GetEnvBool("SLACK_ENABLED", false) {
		return SlackConfig{}
	}
	raw := envcfg.GetEnvString("SLACK_WEBHOOK_URL", "")
	if err := validateWebhookURL(raw, "hooks.slack.com", "/services/"); err != nil {
		logger.Warn("Slack notifications disabled", slog.Any("error", err))
		return SlackConfig{}
	}
	return SlackConfig{
		Enabled:    true,
		WebhookURL: raw,
		Timeout:    envcfg.GetEnvDuration("SLACK_TIMEOUT", defaultWebhookTimeout),
	}
}

// validateWebhookURL errors never include the URL itself since its path carries the token.
func validateWebhookURL(raw, host, pathPrefix string) error {
	if raw == "" {
		return fmt.Errorf("webhook URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook URL format")
	}
	if u.Scheme != "https" {
		return fmt.Errorf("webhook URL must use HTTPS")
	}
	if u.Host != host {
		return fmt.Errorf("invalid webhook host %q", u.Host)
	}
	if !strings.HasPrefix(u.Path, pathPrefix) {
		return fmt.Errorf("invalid webhook path")
	}
	return nil
}
