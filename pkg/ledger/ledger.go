// Package ledger implements the event-dispatch transaction engine: a table of
// named accounts whose balances change only through operation events
// dispatched over an event bus.
//
// Callers never receive errors from operations. Every validation or lookup
// failure is published as an events.Error on the bus and delivered to the
// subscribers registered with OnError. Without subscribers the failure is
// dropped, optionally with a logged warning.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amirasaad/ledgerbus/pkg/domain/account"
	"github.com/amirasaad/ledgerbus/pkg/domain/events"
	"github.com/amirasaad/ledgerbus/pkg/eventbus"
	"github.com/google/uuid"
)

var (
	// ErrUnknownEvent is reported for events that match no operation.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrCallbackRequired is reported when a balance query has no callback.
	ErrCallbackRequired = errors.New("callback must be a function")
)

// Ledger owns the account table. A ledger registers its operation handlers on
// the bus it is built with, so each bus should serve a single ledger.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[account.ID]*account.Account
	names    map[string]account.ID
	nextID   account.ID

	bus           eventbus.Bus
	logger        *slog.Logger
	warnUnhandled bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithUnhandledErrorWarnings makes the ledger log a warning for errors that
// no subscriber receives.
func WithUnhandledErrorWarnings(enabled bool) Option {
	return func(l *Ledger) { l.warnUnhandled = enabled }
}

// New creates an empty ledger and registers its operation handlers on bus.
func New(bus eventbus.Bus, logger *slog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		accounts: make(map[account.ID]*account.Account),
		names:    make(map[string]account.ID),
		nextID:   1,
		bus:      bus,
		logger:   logger.With("component", "ledger"),
	}
	for _, opt := range opts {
		opt(l)
	}

	bus.Register(events.EventTypeAdd.String(), l.handleAdd)
	bus.Register(events.EventTypeGet.String(), l.handleGet)
	bus.Register(events.EventTypeWithdraw.String(), l.handleWithdraw)
	bus.Register(events.EventTypeSend.String(), l.handleSend)
	bus.Register(events.EventTypeChangeLimit.String(), l.handleChangeLimit)
	return l
}

// OnError subscribes fn to the error channel. Subscribers are called in
// subscription order with the message of every failure.
func (l *Ledger) OnError(fn func(message string)) {
	l.bus.Register(events.EventTypeError.String(), func(_ context.Context, e events.Event) error {
		if ev, ok := e.(events.Error); ok {
			fn(ev.Message)
		}
		return nil
	})
}

// On registers an observer for eventType. Observers of an operation run after
// the ledger's own handler and only when the operation was applied. An
// observer error is logged; it never turns an applied operation into a
// failure and does not stop later observers.
func (l *Ledger) On(eventType events.EventType, handler eventbus.HandlerFunc) {
	l.bus.Register(eventType.String(), func(ctx context.Context, e events.Event) error {
		if err := handler(ctx, e); err != nil {
			l.logger.Warn("observer failed", "event_type", e.Type(), "error", err)
		}
		return nil
	})
}

// Register adds a new account and returns its id. On failure the error is
// published on the error channel and ok is false; no id is consumed.
func (l *Ledger) Register(ctx context.Context, reg account.Registration) (id account.ID, ok bool) {
	log := l.logger.With("operation", "register", "name", reg.Name)

	id, err := l.register(reg)
	if err != nil {
		l.fail(ctx, log, err)
		return 0, false
	}
	log.Info("account registered", "account_id", id, "balance", reg.Balance)
	return id, true
}

func (l *Ledger) register(reg account.Registration) (account.ID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.names[reg.Name]; taken {
		return 0, account.ErrNameTaken
	}
	limit, err := account.ValidateRegistration(reg)
	if err != nil {
		return 0, err
	}

	id := l.nextID
	l.nextID++
	l.accounts[id] = &account.Account{
		ID:      id,
		Name:    reg.Name,
		Balance: reg.Balance,
		Limit:   limit,
	}
	l.names[reg.Name] = id
	return id, nil
}

// Emit dispatches e synchronously. Error events go straight to the error
// subscribers. Targeted operations have their account resolved first and are
// dropped with an error when it does not exist. Events that match no
// operation are reported as unknown.
func (l *Ledger) Emit(ctx context.Context, e events.Event) {
	switch ev := e.(type) {
	case nil:
		l.fail(ctx, l.logger, fmt.Errorf("%w: <nil>", ErrUnknownEvent))
		return
	case events.Error:
		l.publishError(ctx, l.logger, ev)
		return
	case *events.Error:
		if ev == nil {
			l.fail(ctx, l.logger, fmt.Errorf("%w: <nil>", ErrUnknownEvent))
			return
		}
		l.publishError(ctx, l.logger, *ev)
		return
	}

	log := l.logger.With("event_type", e.Type(), "correlation_id", uuid.New().String())

	if t, ok := e.(events.Targeted); ok {
		if !l.exists(t.Target()) {
			l.fail(ctx, log, fmt.Errorf("%w: id %d", account.ErrAccountNotFound, t.Target()))
			return
		}
	}
	if !events.EventType(e.Type()).IsOperation() || !l.bus.Handles(e.Type()) {
		l.fail(ctx, log, fmt.Errorf("%w: %s", ErrUnknownEvent, e.Type()))
		return
	}
	if err := l.bus.Emit(ctx, e); err != nil {
		l.fail(ctx, log, err)
		return
	}
	log.Debug("operation applied")
}

// Account returns a snapshot of the account with the given id.
func (l *Ledger) Account(id account.ID) (account.Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acc, ok := l.accounts[id]
	if !ok {
		return account.Account{}, false
	}
	return acc.Snapshot(), true
}

// Accounts returns snapshots of every account ordered by id.
func (l *Ledger) Accounts() []account.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]account.Account, 0, len(l.accounts))
	for id := account.ID(1); id < l.nextID; id++ {
		if acc, ok := l.accounts[id]; ok {
			out = append(out, acc.Snapshot())
		}
	}
	return out
}

// Len returns the number of registered accounts.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.accounts)
}

func (l *Ledger) exists(id account.ID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.accounts[id]
	return ok
}

// lookup must be called with l.mu held.
func (l *Ledger) lookup(id account.ID) (*account.Account, error) {
	acc, ok := l.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", account.ErrAccountNotFound, id)
	}
	return acc, nil
}

// snapshot returns a copy of the account, or nil when it does not exist. It
// must be called with l.mu held.
func (l *Ledger) snapshot(id account.ID) *account.Account {
	acc, ok := l.accounts[id]
	if !ok {
		return nil
	}
	snap := acc.Snapshot()
	return &snap
}

func (l *Ledger) fail(ctx context.Context, log *slog.Logger, err error) {
	var limitErr *account.LimitError
	if errors.As(err, &limitErr) && limitErr.Detail != nil {
		log = log.With("detail", limitErr.Detail)
	}
	log.Debug("operation rejected", "error", err)
	l.publishError(ctx, log, events.NewError(err))
}

func (l *Ledger) publishError(ctx context.Context, log *slog.Logger, ev events.Error) {
	if !l.bus.Handles(events.EventTypeError.String()) {
		if l.warnUnhandled {
			log.Warn("unhandled ledger error", "error", ev.Message)
		}
		return
	}
	if err := l.bus.Emit(ctx, ev); err != nil {
		log.Error("error subscriber failed", "error", err)
	}
}
