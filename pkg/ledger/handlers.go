package ledger

import (
	"context"
	"fmt"

	"github.com/amirasaad/ledgerbus/pkg/domain/account"
	"github.com/amirasaad/ledgerbus/pkg/domain/events"
)

func unexpected(e events.Event) error {
	return fmt.Errorf("%w: %s (%T)", ErrUnknownEvent, e.Type(), e)
}

// handleAdd applies an unchecked adjustment. Unlike withdraw and send it
// neither consults the limit nor keeps the balance non-negative.
func (l *Ledger) handleAdd(_ context.Context, e events.Event) error {
	op, ok := e.(events.Add)
	if !ok {
		return unexpected(e)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	acc, err := l.lookup(op.AccountID)
	if err != nil {
		return err
	}
	if err := acc.ValidateAdd(op.Amount); err != nil {
		return err
	}
	acc.Balance += op.Amount
	l.logger.Info("funds added", "account_id", acc.ID, "amount", op.Amount, "balance", acc.Balance)
	return nil
}

// handleGet reads the balance under the lock and calls back outside it, so
// the callback may emit further events.
func (l *Ledger) handleGet(_ context.Context, e events.Event) error {
	op, ok := e.(events.Get)
	if !ok {
		return unexpected(e)
	}
	if op.Callback == nil {
		return ErrCallbackRequired
	}

	l.mu.RLock()
	acc, err := l.lookup(op.AccountID)
	var balance float64
	if err == nil {
		balance = acc.Balance
	}
	l.mu.RUnlock()
	if err != nil {
		return err
	}

	op.Callback(balance)
	return nil
}

// handleWithdraw validates against a snapshot with the lock released, so the
// limit may read the ledger or emit events, then settles under the lock.
func (l *Ledger) handleWithdraw(_ context.Context, e events.Event) error {
	op, ok := e.(events.Withdraw)
	if !ok {
		return unexpected(e)
	}

	l.mu.RLock()
	acc, err := l.lookup(op.AccountID)
	var snap account.Account
	if err == nil {
		snap = acc.Snapshot()
	}
	l.mu.RUnlock()
	if err != nil {
		return err
	}

	updated, err := snap.ValidateWithdraw(op.Amount)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	updated, err = acc.SettleDebit(snap.Balance, updated, op.Amount, account.ErrInsufficientFundsWithdraw)
	if err != nil {
		return err
	}
	acc.Balance = updated
	l.logger.Info("funds withdrawn", "account_id", acc.ID, "amount", op.Amount, "balance", acc.Balance)
	return nil
}

// handleSend validates both sides on snapshots with the lock released, then
// settles both balances under one lock so no partial transfer is observable.
func (l *Ledger) handleSend(_ context.Context, e events.Event) error {
	op, ok := e.(events.Send)
	if !ok {
		return unexpected(e)
	}

	l.mu.RLock()
	fromSnap, toSnap := l.snapshot(op.From), l.snapshot(op.To)
	l.mu.RUnlock()

	updated, err := fromSnap.ValidateTransfer(toSnap, op.Amount)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	from, to := l.accounts[op.From], l.accounts[op.To]
	updated, err = from.SettleDebit(fromSnap.Balance, updated, op.Amount, account.ErrInsufficientFundsTransfer)
	if err != nil {
		return err
	}
	if !account.IsFinite(to.Balance + op.Amount) {
		return account.ErrBalanceOverflow
	}
	from.Balance = updated
	to.Balance += op.Amount
	l.logger.Info("funds sent",
		"from_account_id", from.ID,
		"to_account_id", to.ID,
		"amount", op.Amount,
	)
	return nil
}

func (l *Ledger) handleChangeLimit(_ context.Context, e events.Event) error {
	op, ok := e.(events.ChangeLimit)
	if !ok {
		return unexpected(e)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	acc, err := l.lookup(op.AccountID)
	if err != nil {
		return err
	}
	if err := acc.ChangeLimit(op.Limit, op.Rule); err != nil {
		return err
	}
	l.logger.Info("limit changed", "account_id", acc.ID, "rule", op.Rule)
	return nil
}
