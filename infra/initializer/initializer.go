package initializer

import (
	"errors"
	"io"
	"log/slog"

	infra_eventbus "github.com/amirasaad/ledgerbus/infra/eventbus"
	"github.com/amirasaad/ledgerbus/pkg/config"
	"github.com/amirasaad/ledgerbus/pkg/eventbus"
	"github.com/amirasaad/ledgerbus/pkg/ledger"
)

// Deps holds the wired dependencies of a ledger process.
type Deps struct {
	Config   *config.App
	Logger   *slog.Logger
	EventBus eventbus.Bus
	Ledger   *ledger.Ledger
}

// InitializeDependencies builds the logger, the event bus and a ledger bound
// to it. Log output goes to logOut.
func InitializeDependencies(cfg *config.App, logOut io.Writer) (*Deps, error) {
	if cfg == nil || cfg.Log == nil || cfg.Ledger == nil {
		return nil, errors.New("incomplete configuration")
	}

	logger := setupLogger(cfg.Log, logOut)
	bus := infra_eventbus.NewWithMemory(logger)
	l := ledger.New(bus, logger, ledger.WithUnhandledErrorWarnings(cfg.Ledger.WarnUnhandled))

	logger.Debug("dependencies initialized", "env", cfg.Env)
	return &Deps{
		Config:   cfg,
		Logger:   logger,
		EventBus: bus,
		Ledger:   l,
	}, nil
}
