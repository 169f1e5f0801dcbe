// Package notify dispatches operator notifications (new bills, low stock)
// to every enabled delivery channel without blocking the caller.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"agrisense/internal/domain/entity"
	"agrisense/internal/infra/notifier"
)

var (
	ErrChannelDisabled = errors.New("channel is disabled")
	ErrInvalidBill     = errors.New("invalid bill data")
	ErrNothingToNotify = errors.New("nothing to notify")
)

// Channel is one notification destination.
//
// Implementations must be safe for concurrent use and must respect ctx
// cancellation. Rate limiting and retries are the channel's job.
type Channel interface {
	// Name is a lowercase identifier used in logs and metric labels.
	Name() string

	// IsEnabled reports whether the channel is configured. Disabled
	// channels are skipped by the service.
	IsEnabled() bool

	NotifyLowStock(ctx context.Context, products []entity.Product) error
	NotifyBill(ctx context.Context, bill *entity.BillReport) error
}

// WebhookChannel renders events as notifier messages and hands them to a
// webhook notifier.
type WebhookChannel struct {
	name     string
	enabled  bool
	notifier notifier.Notifier
}

// NewDiscordChannel returns a Discord channel. A disabled config yields a
// channel that discards messages.
func NewDiscordChannel(config notifier.DiscordConfig) *WebhookChannel {
	n := notifier.Discard
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config)
	}
	return NewWebhookChannel("discord", config.Enabled, n)
}

// NewSlackChannel returns a Slack channel. A disabled config yields a
// channel that discards messages.
func NewSlackChannel(config notifier.SlackConfig) *WebhookChannel {
	n := notifier.Discard
	if config.Enabled {
		n = notifier.NewSlackNotifier(config)
	}
	return NewWebhookChannel("slack", config.Enabled, n)
}

func NewWebhookChannel(name string, enabled bool, n notifier.Notifier) *WebhookChannel {
	return &WebhookChannel{name: name, enabled: enabled, notifier: n}
}

func (c *WebhookChannel) Name() string    { return c.name }
func (c *WebhookChannel) IsEnabled() bool { return c.enabled }

func (c *WebhookChannel) NotifyLowStock(ctx context.Context, products []entity.Product) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if len(products) == 0 {
		return ErrNothingToNotify
	}
	return c.notifier.Send(ctx, lowStockMessage(products))
}

func (c *WebhookChannel) NotifyBill(ctx context.Context, bill *entity.BillReport) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if bill == nil {
		return ErrInvalidBill
	}
	return c.notifier.Send(ctx, billMessage(bill))
}

// ChannelsFromEnv builds the Discord and Slack channels from DISCORD_* and
// SLACK_* variables. Disabled channels are included so health reports list them.
func ChannelsFromEnv(logger *slog.Logger) []Channel {
	return []Channel{
		NewDiscordChannel(notifier.LoadDiscordConfig(logger)),
		NewSlackChannel(notifier.LoadSlackConfig(logger)),
	}
}
