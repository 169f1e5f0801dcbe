// Package notifier delivers operator notifications (low stock, new bills) to
// chat webhooks. Messages are channel-neutral; each notifier renders them in
// its own payload format.
package notifier

import (
	"context"
	"time"
)

// Level controls how a message is highlighted.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Field is a labelled value shown under the message body.
type Field struct {
	Name  string
	Value string
}

// Message is one notification.
type Message struct {
	Title     string
	Body      string
	Fields    []Field
	Level     Level
	Timestamp time.Time
}

// Notifier sends a message to one destination. Implementations handle rate
// limiting and retries internally and respect ctx cancellation.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// Discard accepts and drops every message. Disabled channels send here.
var Discard Notifier = NotifierFunc(func(context.Context, Message) error { return nil })
