package events

import "github.com/amirasaad/ledgerbus/pkg/domain/account"

// Event is anything that can travel over the bus.
type Event interface {
	Type() string
}

// Targeted is implemented by operations that act on a single account. The
// ledger resolves the target before the handler runs.
type Targeted interface {
	Event
	Target() account.ID
}

// Add adjusts the balance of an account by Amount, which may be negative.
type Add struct {
	AccountID account.ID
	Amount    float64
}

func (e Add) Type() string { return EventTypeAdd.String() }
func (e Add) Target() account.ID { return e.AccountID }

// Get reports the balance of an account to Callback.
type Get struct {
	AccountID account.ID
	Callback  func(balance float64)
}

func (e Get) Type() string { return EventTypeGet.String() }
func (e Get) Target() account.ID { return e.AccountID }

// Withdraw debits Amount from an account.
type Withdraw struct {
	AccountID account.ID
	Amount    float64
}

func (e Withdraw) Type() string { return EventTypeWithdraw.String() }
func (e Withdraw) Target() account.ID { return e.AccountID }

// Send moves Amount from one account to another. It is not Targeted: the
// handler checks both accounts itself.
type Send struct {
	From   account.ID
	To     account.ID
	Amount float64
}

func (e Send) Type() string { return EventTypeSend.String() }

// ChangeLimit replaces the limit predicate of an account. Either Limit or
// Rule is set; Rule is compiled with account.ParseLimit.
type ChangeLimit struct {
	AccountID account.ID
	Limit     account.Limit
	Rule      string
}

func (e ChangeLimit) Type() string { return EventTypeChangeLimit.String() }
func (e ChangeLimit) Target() account.ID { return e.AccountID }

// Error carries a human readable failure message.
type Error struct {
	Message string
}

func (e Error) Type() string { return EventTypeError.String() }

// NewError builds an Error event from err.
func NewError(err error) Error {
	return Error{Message: err.Error()}
}
