// Package events is the in-process event bus modules use to react to each
// other's domain events without importing one another.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is a domain event. EventName is the subscription key.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent is embedded by every domain event.
type BaseEvent struct {
	EventID   uuid.UUID `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// ID identifies one occurrence, so logs from several handlers can be joined.
func (e BaseEvent) ID() uuid.UUID {
	return e.EventID
}

// NewBaseEvent stamps a new occurrence in UTC.
func NewBaseEvent() BaseEvent {
	return BaseEvent{EventID: uuid.New(), Timestamp: time.Now().UTC()}
}

// Handler reacts to one event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publisher is what a producing module needs. Publish must not block on
// handlers.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Bus adds synchronous delivery and subscription to Publisher.
type Bus interface {
	Publisher
	// PublishSync runs the handlers in order and returns their joined errors.
	PublishSync(ctx context.Context, event Event) error
	// Subscribe registers handler for events whose EventName is eventName.
	Subscribe(eventName string, handler Handler)
}

var _ Bus = (*InMemoryBus)(nil)
