package eventbus

import (
	"context"

	"github.com/amirasaad/ledgerbus/pkg/domain/events"
)

// HandlerFunc handles one event. A returned error stops dispatch of that event.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus defines the contract for registering handlers and dispatching events.
type Bus interface {
	// Register appends handler to the handlers of eventType. Handlers run in
	// registration order.
	Register(eventType string, handler HandlerFunc)
	// Emit synchronously dispatches the event to the handlers of its type.
	Emit(ctx context.Context, e events.Event) error
	// Handles reports whether at least one handler is registered for eventType.
	Handles(eventType string) bool
}
