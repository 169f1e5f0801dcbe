package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SlackConfig contains configuration for Slack Incoming Webhook notifications.
type SlackConfig struct {
	Enabled bool

	// WebhookURL includes the webhook token; never log it.
	WebhookURL string

	Timeout time.Duration
}

// Slack Block Kit limits
const (
	maxSectionTextLength = 3000
	maxContextTextLength = 2000
	maxFallbackLength    = 150
)

// SlackNotifier posts messages using Block Kit.
type SlackNotifier struct {
	*webhook
}

// NewSlackNotifier rate limits to 1 req/s, Slack's documented webhook limit.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{webhook: newWebhook("slack", config.WebhookURL, config.Timeout, 1.0, 1)}
}

type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// buildBlockKitPayload renders the title and body as a section, the fields
// as a second section, and the timestamp as a context block.
func buildBlockKitPayload(msg Message) SlackWebhookPayload {
	icon := ":seedling:"
	if msg.Level == LevelWarning {
		icon = ":warning:"
	}

	section := fmt.Sprintf("%s *%s*", icon, msg.Title)
	if msg.Body != "" {
		section += "\n\n" + msg.Body
	}

	blocks := []SlackBlock{{
		Type: "section",
		Text: &SlackTextObject{Type: "mrkdwn", Text: truncate(section, maxSectionTextLength, truncationSuffix)},
	}}

	if len(msg.Fields) > 0 {
		var sb strings.Builder
		for _, f := range msg.Fields {
			fmt.Fprintf(&sb, "*%s*: %s\n", f.Name, f.Value)
		}
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackTextObject{Type: "mrkdwn", Text: truncate(strings.TrimSuffix(sb.String(), "\n"), maxSectionTextLength, truncationSuffix)},
		})
	}

	blocks = append(blocks, SlackBlock{
		Type: "context",
		Elements: []SlackTextObject{{
			Type: "mrkdwn",
			Text: truncate("agrisense • "+msg.Timestamp.UTC().Format(time.RFC3339), maxContextTextLength, truncationSuffix),
		}},
	})

	return SlackWebhookPayload{
		Text:   truncate(msg.Title, maxFallbackLength, truncationSuffix),
		Blocks: blocks,
	}
}

func (s *SlackNotifier) Send(ctx context.Context, msg Message) error {
	return s.deliver(ctx, buildBlockKitPayload(msg))
}
