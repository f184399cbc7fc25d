package account

import (
	"errors"
	"math"
)

var (
	// ErrAccountNotFound is returned when an account id does not resolve to an account.
	ErrAccountNotFound = errors.New("account does not exist")

	// ErrNameTaken is returned when registering a name that is already in use.
	ErrNameTaken = errors.New("account with this name already exists")

	// ErrNameRequired is returned when registering an account without a name.
	ErrNameRequired = errors.New("account name must not be empty")

	// ErrInitialBalance is returned when the opening balance is not a finite positive number.
	ErrInitialBalance = errors.New("initial balance must be a positive number")

	// ErrInvalidLimit is returned when a registration carries a limit that cannot be used.
	ErrInvalidLimit = errors.New("limit must be a function or null")

	// ErrLimitRequired is returned when changing a limit to nothing.
	ErrLimitRequired = errors.New("limit must be a function")

	// ErrAmountMustBePositive is returned for add and withdraw amounts that fail validation.
	ErrAmountMustBePositive = errors.New("amount must be a positive number")

	// ErrInsufficientFundsWithdraw is returned when a withdrawal would overdraw the account.
	ErrInsufficientFundsWithdraw = errors.New("insufficient funds for withdrawal")

	// ErrWithdrawLimit is returned when the account limit rejects a withdrawal.
	ErrWithdrawLimit = errors.New("withdrawal does not satisfy limit condition")

	// ErrSenderNotFound is returned when the sending account of a transfer does not exist.
	ErrSenderNotFound = errors.New("sender account does not exist")

	// ErrRecipientNotFound is returned when the receiving account of a transfer does not exist.
	ErrRecipientNotFound = errors.New("recipient account does not exist")

	// ErrCannotTransferToSameAccount is returned when sender and recipient are the same account.
	ErrCannotTransferToSameAccount = errors.New("sender and recipient cannot be the same")

	// ErrTransferAmountMustBePositive is returned when a transfer amount fails validation.
	ErrTransferAmountMustBePositive = errors.New("amount to send must be a positive number")

	// ErrInsufficientFundsTransfer is returned when a transfer would overdraw the sender.
	ErrInsufficientFundsTransfer = errors.New("insufficient funds for transfer")

	// ErrTransferLimit is returned when the sender's limit rejects a transfer.
	ErrTransferLimit = errors.New("transfer does not satisfy limit condition")

	// ErrBalanceOverflow is returned when a credit would push a balance past the largest finite value.
	ErrBalanceOverflow = errors.New("amount exceeds the maximum representable balance")
)

// LimitError reports a rejected limit. Error returns only the reason so the
// message stays stable; Detail explains what was wrong with the rule.
type LimitError struct {
	Reason error
	Detail error
}

func (e *LimitError) Error() string { return e.Reason.Error() }

func (e *LimitError) Unwrap() []error {
	if e.Detail == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Detail}
}

var errBothLimits = errors.New("got both a predicate and a rule")

// ID identifies an account. Ids start at 1 and are never reused.
type ID int64

// Limit decides whether a debit is allowed given the amount and the balance
// before and after it. A nil Limit allows every debit.
type Limit func(amount, before, after float64) bool

// Account is a named ledger entry.
//
// Invariants:
//   - Name is non-empty and unique within a ledger.
//   - Balance is always finite.
//   - Balance is never negative after a successful withdrawal or transfer.
type Account struct {
	ID      ID
	Name    string
	Balance float64
	Limit   Limit
}

// Registration carries the input of an account registration. Limit and
// LimitRule are mutually exclusive; LimitRule is parsed with ParseLimit.
type Registration struct {
	Name      string
	Balance   float64
	Limit     Limit
	LimitRule string
}

// ResolveLimit returns the predicate the registration asks for, or nil when
// none was given.
func (r Registration) ResolveLimit() (Limit, error) {
	if r.LimitRule == "" {
		return r.Limit, nil
	}
	if r.Limit != nil {
		return nil, &LimitError{Reason: ErrInvalidLimit, Detail: errBothLimits}
	}
	limit, err := ParseLimit(r.LimitRule)
	if err != nil {
		return nil, &LimitError{Reason: ErrInvalidLimit, Detail: err}
	}
	return limit, nil
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsPositive reports whether v is a finite number greater than zero.
func IsPositive(v float64) bool {
	return IsFinite(v) && v > 0
}

// ValidateRegistration checks the balance and limit of a registration. Name
// uniqueness is a ledger concern and is checked by the caller first.
func ValidateRegistration(r Registration) (Limit, error) {
	if r.Name == "" {
		return nil, ErrNameRequired
	}
	if !IsPositive(r.Balance) {
		return nil, ErrInitialBalance
	}
	return r.ResolveLimit()
}

// ValidateAdd checks an unchecked balance adjustment. Negative amounts are
// corrections and are allowed; only non-finite amounts are rejected.
func (a *Account) ValidateAdd(amount float64) error {
	if !IsFinite(amount) {
		return ErrAmountMustBePositive
	}
	if !IsFinite(a.Balance + amount) {
		return ErrBalanceOverflow
	}
	return nil
}

// ValidateWithdraw runs the withdrawal checks in order and returns the balance
// the account would have afterwards. The account is not modified.
func (a *Account) ValidateWithdraw(amount float64) (float64, error) {
	if !IsPositive(amount) {
		return 0, ErrAmountMustBePositive
	}
	updated := a.Balance - amount
	if updated < 0 {
		return 0, ErrInsufficientFundsWithdraw
	}
	if a.Limit != nil && !a.Limit(amount, a.Balance, updated) {
		return 0, ErrWithdrawLimit
	}
	return updated, nil
}

// ValidateTransfer runs the transfer checks for sending amount from a to dest
// and returns the sender balance afterwards. Neither account is modified.
func (a *Account) ValidateTransfer(dest *Account, amount float64) (float64, error) {
	if a == nil {
		return 0, ErrSenderNotFound
	}
	if dest == nil {
		return 0, ErrRecipientNotFound
	}
	if a.ID == dest.ID {
		return 0, ErrCannotTransferToSameAccount
	}
	if !IsPositive(amount) {
		return 0, ErrTransferAmountMustBePositive
	}
	updated := a.Balance - amount
	if updated < 0 {
		return 0, ErrInsufficientFundsTransfer
	}
	if a.Limit != nil && !a.Limit(amount, a.Balance, updated) {
		return 0, ErrTransferLimit
	}
	if !IsFinite(dest.Balance + amount) {
		return 0, ErrBalanceOverflow
	}
	return updated, nil
}

// SettleDebit returns the balance to commit for a debit of amount that was
// validated against before and yielded validated. When the balance moved in
// the meantime the debit is reapplied to the current balance and funds are
// checked again with insufficient as the error. The limit is not consulted a
// second time.
func (a *Account) SettleDebit(before, validated, amount float64, insufficient error) (float64, error) {
	if a.Balance == before {
		return validated, nil
	}
	updated := a.Balance - amount
	if updated < 0 {
		return 0, insufficient
	}
	return updated, nil
}

// ChangeLimit replaces the account's limit with limit, or with the predicate
// compiled from rule. Exactly one of them must be given. The previous limit
// is kept when the new one is rejected.
func (a *Account) ChangeLimit(limit Limit, rule string) error {
	switch {
	case rule != "" && limit != nil:
		return &LimitError{Reason: ErrLimitRequired, Detail: errBothLimits}
	case rule != "":
		parsed, err := ParseLimit(rule)
		if err != nil {
			return &LimitError{Reason: ErrLimitRequired, Detail: err}
		}
		a.Limit = parsed
	case limit != nil:
		a.Limit = limit
	default:
		return ErrLimitRequired
	}
	return nil
}

// Snapshot returns a copy of the account safe to hand to callers.
func (a *Account) Snapshot() Account {
	return *a
}

// HasLimit reports whether the account carries a limit predicate.
func (a *Account) HasLimit() bool {
	return a.Limit != nil
}
