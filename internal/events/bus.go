// Package events provides the in-process notification bus for progression
// lifecycle events. Subscribers run strictly after the core commit and are
// each wrapped in their own failure boundary: a panicking or erroring
// subscriber is logged and swallowed, never aborting the commit or the
// other subscribers.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/swsaga/progression-api/internal/entities/saga"
)

// Topic identifies an event stream
type Topic string

// Topics emitted by the progression engine
const (
	TopicStepChanged      Topic = "progression.step_changed"
	TopicSessionUpdated   Topic = "progression.session_updated"
	TopicSessionCompleted Topic = "progression.session_completed"
)

// Event carries one progression notification
type Event struct {
	Topic       Topic
	CharacterID string
	Mode        saga.Mode
	Step        saga.StepID
	Detail      map[string]interface{}
}

// Handler consumes events. A non-nil error is logged, not propagated.
type Handler func(ctx context.Context, event Event) error

// Bus is an ordered-delivery in-process event bus
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Topic][]Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[Topic][]Handler),
	}
}

// Subscribe registers a handler for a topic. Handlers run in subscription
// order.
func (b *Bus) Subscribe(topic Topic, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], handler)
}

// Publish delivers an event to every subscriber of its topic. Each handler
// runs inside its own recover boundary so one failure cannot affect
// another's delivery.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Topic]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(ctx, event, handler)
	}
}

func (b *Bus) deliver(ctx context.Context, event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "event subscriber panicked",
				"topic", string(event.Topic),
				"character_id", event.CharacterID,
				"panic", r)
		}
	}()

	if err := handler(ctx, event); err != nil {
		slog.ErrorContext(ctx, "event subscriber failed",
			"topic", string(event.Topic),
			"character_id", event.CharacterID,
			"error", err.Error())
	}
}
