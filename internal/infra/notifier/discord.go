package notifier

import (
	"context"
	"time"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	Enabled bool

	// WebhookURL includes the webhook token; never log it.
	WebhookURL string

	Timeout time.Duration
}

// Discord limits
const (
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	maxEmbedFields       = 25
	maxFieldValueLength  = 1024
	truncationSuffix     = "..."
)

// Embed colors
const (
	discordGreen = 5763719  // #57F287
	discordAmber = 16705372 // #FEE75C
)

// DiscordNotifier posts messages as a single embed.
type DiscordNotifier struct {
	*webhook
}

// NewDiscordNotifier rate limits to 0.5 req/s with a burst of 3, which keeps
// under Discord's 30 requests per minute per webhook.
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{webhook: newWebhook("discord", config.WebhookURL, config.Timeout, 0.5, 3)}
}

type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Footer      DiscordEmbedFooter  `json:"footer"`
	Timestamp   string              `json:"timestamp"`
}

type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

func buildEmbedPayload(msg Message) DiscordWebhookPayload {
	color := discordGreen
	if msg.Level == LevelWarning {
		color = discordAmber
	}

	embed := DiscordEmbed{
		Title:       truncate(msg.Title, maxTitleLength, truncationSuffix),
		Description: truncate(msg.Body, maxDescriptionLength, truncationSuffix),
		Color:       color,
		Footer:      DiscordEmbedFooter{Text: "agrisense"},
		Timestamp:   msg.Timestamp.UTC().Format(time.RFC3339),
	}
	for i, f := range msg.Fields {
		if i == maxEmbedFields {
			break
		}
		embed.Fields = append(embed.Fields, DiscordEmbedField{
			Name:   truncate(f.Name, maxTitleLength, truncationSuffix),
			Value:  truncate(f.Value, maxFieldValueLength, truncationSuffix),
			Inline: true,
		})
	}
	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

func (d *DiscordNotifier) Send(ctx context.Context, msg Message) error {
	return d.deliver(ctx, buildEmbedPayload(msg))
}
