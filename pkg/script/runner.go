package script

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/amirasaad/ledgerbus/pkg/domain/account"
	"github.com/amirasaad/ledgerbus/pkg/domain/events"
	"github.com/amirasaad/ledgerbus/pkg/ledger"
)

// Result summarizes a run.
type Result struct {
	Steps    int
	Failures int
}

// Printf writes a formatted transcript line.
type Printf func(w io.Writer, format string, a ...interface{})

// Runner replays scripts against one ledger. It subscribes to the ledger's
// error channel when created, so a ledger should have at most one runner.
type Runner struct {
	ledger  *ledger.Ledger
	logger  *slog.Logger
	errorf  Printf
	pending []string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithErrorPrinter sets how failed steps are written, e.g. in color.
func WithErrorPrinter(p Printf) RunnerOption {
	return func(r *Runner) { r.errorf = p }
}

// NewRunner creates a runner bound to l.
func NewRunner(l *ledger.Ledger, logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		ledger: l,
		logger: logger.With("component", "script"),
		errorf: func(w io.Writer, format string, a ...interface{}) {
			fmt.Fprintf(w, format, a...) //nolint:errcheck
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	l.OnError(func(message string) {
		r.pending = append(r.pending, message)
	})
	return r
}

// Run executes every step of s in order and writes one transcript line per
// step to w. A failing step does not stop the run; failures are counted in
// the result. The returned error is only set when writing fails.
func (r *Runner) Run(ctx context.Context, s *Script, w io.Writer) (Result, error) {
	log := r.logger.With("script", s.Name)
	log.Info("running script", "steps", len(s.Steps))

	var res Result
	for i, step := range s.Steps {
		r.pending = r.pending[:0]
		desc, outcome := r.apply(ctx, step)
		res.Steps++

		if len(r.pending) > 0 {
			res.Failures++
			log.Debug("step failed", "step", i+1, "op", step.Op, "error", strings.Join(r.pending, "; "))
			r.errorf(w, "%s => error: %s\n", desc, strings.Join(r.pending, "; "))
			continue
		}
		if _, err := fmt.Fprintf(w, "%s => %s\n", desc, outcome); err != nil {
			return res, err
		}
	}

	log.Info("script finished", "steps", res.Steps, "failures", res.Failures)
	return res, nil
}

// apply executes one step and returns its description and success outcome.
func (r *Runner) apply(ctx context.Context, step Step) (desc, outcome string) {
	switch step.Op {
	case OpRegister:
		desc = fmt.Sprintf("register name=%s balance=%s", step.Name, formatAmount(step.Balance))
		if step.Limit != "" {
			desc += fmt.Sprintf(" limit=%q", step.Limit)
		}
		id, ok := r.ledger.Register(ctx, account.Registration{
			Name:      step.Name,
			Balance:   step.Balance,
			LimitRule: step.Limit,
		})
		if ok {
			outcome = fmt.Sprintf("id %d", id)
		}
	case OpAdd:
		desc = fmt.Sprintf("add account=%d amount=%s", step.Account, formatAmount(step.Amount))
		r.ledger.Emit(ctx, events.Add{AccountID: account.ID(step.Account), Amount: step.Amount})
		outcome = "ok"
	case OpGet:
		desc = fmt.Sprintf("get account=%d", step.Account)
		r.ledger.Emit(ctx, events.Get{AccountID: account.ID(step.Account), Callback: func(balance float64) {
			outcome = formatAmount(balance)
		}})
	case OpWithdraw:
		desc = fmt.Sprintf("withdraw account=%d amount=%s", step.Account, formatAmount(step.Amount))
		r.ledger.Emit(ctx, events.Withdraw{AccountID: account.ID(step.Account), Amount: step.Amount})
		outcome = "ok"
	case OpSend:
		desc = fmt.Sprintf("send from=%d to=%d amount=%s", step.From, step.To, formatAmount(step.Amount))
		r.ledger.Emit(ctx, events.Send{From: account.ID(step.From), To: account.ID(step.To), Amount: step.Amount})
		outcome = "ok"
	case OpChangeLimit:
		desc = fmt.Sprintf("changeLimit account=%d", step.Account)
		if step.Limit != "" {
			desc += fmt.Sprintf(" limit=%q", step.Limit)
		}
		r.ledger.Emit(ctx, events.ChangeLimit{AccountID: account.ID(step.Account), Rule: step.Limit})
		outcome = "ok"
	case OpBalances:
		desc = "balances"
		outcome = formatBalances(r.ledger.Accounts())
	default:
		// Parse rejects unknown ops; scripts built in code end up here.
		desc = step.Op
		r.ledger.Emit(ctx, events.Error{Message: fmt.Sprintf("%s: %s", ledger.ErrUnknownEvent, step.Op)})
	}
	return desc, outcome
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBalances(accounts []account.Account) string {
	if len(accounts) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		parts = append(parts, fmt.Sprintf("%d:%s=%s", acc.ID, acc.Name, formatAmount(acc.Balance)))
	}
	return strings.Join(parts, " ")
}
