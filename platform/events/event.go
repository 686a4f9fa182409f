// Package events provides the event bus used for decoupled communication
// between modules (e.g. leads publishing LeadCreated, notification
// subscribing to it).
package events

import (
	"context"
	"time"
)

// Event is the base interface all domain events implement.
type Event interface {
	// EventName returns a unique identifier for the event type.
	EventName() string
	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time
}

// BaseEvent provides the timestamp shared by all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent creates a base event stamped with the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

// Handler processes events of a specific type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish delivers the event to every handler asynchronously.
	// Handler errors are logged, never returned.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and waits for all handlers. The first
	// handler error is returned after every handler has run.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler for an event name.
	Subscribe(eventName string, handler Handler)
}
