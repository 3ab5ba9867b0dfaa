package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) Payload() interface{}  { return e.Data }

type Handler func(ctx context.Context, event Event) error

// Publisher is what services depend on; *EventBus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus closed")

// EventBus is the in-process fan-out between services and side-effect
// subscribers (activity log, notifications). Delivery is at most once.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool
	inflight sync.WaitGroup
	logger   *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debug("event handler registered", "event_type", eventType, "total_handlers", len(eb.handlers[eventType]))
}

func (eb *EventBus) SubscribeAll(eventTypes []string, handler Handler) {
	for _, t := range eventTypes {
		eb.Subscribe(t, handler)
	}
}

// Publish runs every handler in its own goroutine with a context detached
// from the caller, so a finished request does not cancel its side effects.
// The in-flight count is raised under the read lock so Close+Wait never
// races a late Add.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers, err := eb.handlersLocked(event)
	if err != nil || len(handlers) == 0 {
		eb.mu.RUnlock()
		return err
	}
	eb.inflight.Add(len(handlers))
	eb.mu.RUnlock()

	detached := context.WithoutCancel(ctx)
	for _, h := range handlers {
		go func(h Handler) {
			defer eb.inflight.Done()
			_ = eb.invoke(detached, h, event)
		}(h)
	}
	return nil
}

// PublishSync runs handlers in order on the caller's goroutine and stops at the first failure.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	handlers, err := eb.handlersFor(event)
	if err != nil {
		return err
	}
	for _, h := range handlers {
		if err := eb.invoke(ctx, h, event); err != nil {
			return fmt.Errorf("handler failed for event %s: %w", event.EventType(), err)
		}
	}
	return nil
}

// Close stops accepting events. Handlers already dispatched keep running; use Wait to drain them.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	eb.closed = true
	eb.mu.Unlock()
}

// Wait blocks until every asynchronously dispatched handler returned or ctx is done.
func (eb *EventBus) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		eb.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (eb *EventBus) handlersFor(event Event) ([]Handler, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return eb.handlersLocked(event)
}

// handlersLocked expects eb.mu to be held.
func (eb *EventBus) handlersLocked(event Event) ([]Handler, error) {
	if eb.closed {
		eb.logger.Warn("event dropped, bus closed", "event_type", event.EventType(), "event_id", event.EventID())
		return nil, ErrBusClosed
	}
	handlers := eb.handlers[event.EventType()]
	if len(handlers) == 0 {
		eb.logger.Debug("no handlers for event type", "event_type", event.EventType())
		return nil, nil
	}
	eb.logger.Debug("publishing event", "event_type", event.EventType(), "event_id", event.EventID(), "handlers_count", len(handlers))
	return handlers, nil
}

// invoke turns a handler panic into an error so one bad subscriber cannot take the process down.
func (eb *EventBus) invoke(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			eb.logger.Error("event handler failed", "event_type", event.EventType(), "event_id", event.EventID(), "error", err)
		}
	}()
	return h(ctx, event)
}
