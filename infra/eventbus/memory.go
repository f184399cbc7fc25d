package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/ledgerbus/pkg/domain/events"
	"github.com/amirasaad/ledgerbus/pkg/eventbus"
)

// MemoryEventBus is a synchronous in-memory implementation of the Bus interface.
type MemoryEventBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	record    bool
	published []events.Event
}

// Option configures a MemoryEventBus.
type Option func(*MemoryEventBus)

// WithRecording keeps every emitted event for Published. Recording grows
// without bound, so it is meant for tests.
func WithRecording() Option {
	return func(b *MemoryEventBus) { b.record = true }
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger, opts ...Option) *MemoryEventBus {
	b := &MemoryEventBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Handles reports whether any handler is registered for eventType.
func (b *MemoryEventBus) Handles(eventType string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType]) > 0
}

// Emit dispatches the event to the registered handlers of its type, in
// registration order, on the caller's goroutine. The handler list is copied
// before dispatch so handlers may register or emit without deadlocking.
func (b *MemoryEventBus) Emit(ctx context.Context, event events.Event) error {
	eventType := event.Type()

	b.mu.Lock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[eventType]...)
	if b.record {
		b.published = append(b.published, event)
	}
	b.mu.Unlock()

	if len(handlers) == 0 {
		b.logger.Debug("no handlers for event", "type", eventType)
		return nil
	}
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// ClearPublished clears the list of published events. This is useful for testing.
func (b *MemoryEventBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}

// Published returns a copy of the events emitted so far. It is empty unless
// the bus was created WithRecording.
func (b *MemoryEventBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]events.Event(nil), b.published...)
}

// Ensure MemoryEventBus implements the Bus interface.
var _ eventbus.Bus = (*MemoryEventBus)(nil)
