package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fastfood_delivery_backend/platform/logger"

	"github.com/google/uuid"
)

// InMemoryBus is a process-local Bus. Handlers for one event run in
// registration order under PublishSync and concurrently under Publish.
type InMemoryBus struct {
	log *logger.Logger

	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

// NewInMemoryBus creates an empty bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	if log == nil {
		log = logger.Nop()
	}
	return &InMemoryBus{
		log:      log,
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for eventName.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

func (b *InMemoryBus) handlersFor(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := b.handlers[name]
	out := make([]Handler, len(hs))
	copy(out, hs)
	return out
}

// Publish hands the event to every handler in its own goroutine. The request
// context is detached so handlers outlive the HTTP request that caused them.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	name := event.EventName()
	detached := context.WithoutCancel(ctx)
	log := b.log.With("event", name)
	if ided, ok := event.(interface{ ID() uuid.UUID }); ok {
		log = log.With("event_id", ided.ID().String())
	}

	for _, h := range b.handlersFor(name) {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error("event handler panicked", "panic", fmt.Sprint(r))
				}
			}()
			if err := h.Handle(detached, event); err != nil {
				log.Error("event handler failed", "error", err)
			}
		}(h)
	}
}

// PublishSync runs every handler in order and joins their errors.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	var errs []error
	for _, h := range b.handlersFor(event.EventName()) {
		if err := h.Handle(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Wait blocks until every asynchronously published handler has returned.
func (b *InMemoryBus) Wait() {
	b.wg.Wait()
}
