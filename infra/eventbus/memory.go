// Package eventbus provides the in-memory and Kafka-backed implementations
// of the notification bus.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mhasanin/digibank/pkg/eventbus"
)

// MemoryBus dispatches events to in-process subscribers. Handlers run on the
// publisher's goroutine; they are expected to be quick and to do their own
// error handling.
type MemoryBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []eventbus.Event // retained for tests
}

// NewMemoryBus creates an in-memory bus.
func NewMemoryBus(logger *slog.Logger) *MemoryBus {
	return &MemoryBus{
		handlers:  make(map[string][]eventbus.HandlerFunc),
		logger:    logger.With("bus", "memory"),
		published: make([]eventbus.Event, 0),
	}
}

// Subscribe registers a handler for an event type.
func (b *MemoryBus) Subscribe(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches the event to every handler registered for its type.
func (b *MemoryBus) Publish(ctx context.Context, event eventbus.Event) error {
	b.mu.RLock()
	handlers := append([]eventbus.HandlerFunc{}, b.handlers[event.Type()]...)
	b.mu.RUnlock()

	b.mu.Lock()
	b.published = append(b.published, event)
	b.mu.Unlock()

	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("panic recovered in event handler", "type", event.Type(), "panic", r)
				}
			}()
			handler(ctx, event)
		}()
	}
	return nil
}

// Published returns a copy of the events published so far. Useful in tests.
func (b *MemoryBus) Published() []eventbus.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]eventbus.Event, len(b.published))
	copy(out, b.published)
	return out
}

var _ eventbus.Bus = (*MemoryBus)(nil)
