// Package eventbus defines the notification event contract. Services publish
// events after state changes; subscribers (the mailer, the Kafka bridge)
// deliver them out-of-band. Delivery is fire-and-forget: a failing handler
// is logged, never retried, and never fails the request that published.
package eventbus

import (
	"context"
)

// Event is implemented by every notification event.
type Event interface {
	Type() string
}

// HandlerFunc consumes a published event.
type HandlerFunc func(ctx context.Context, event Event)

// Bus publishes events to subscribers registered by event type.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType string, handler HandlerFunc)
}
