package cli

import (
	"fmt"

	"github.com/amirasaad/ledgerbus/infra/initializer"
	"github.com/amirasaad/ledgerbus/pkg/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the dependencies built from them.
type RootOptions struct {
	EnvFile  string
	LogLevel string
	NoColor  bool

	deps *initializer.Deps
}

// NewRootCommand creates the root command of the ledger CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "ledger",
		Short:         "In-memory event-dispatch ledger",
		Long:          "Replay ledger operations (register, add, get, withdraw, send, changeLimit) from YAML scripts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.EnvFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if opts.LogLevel != "" {
				cfg.Log.Level = opts.LogLevel
			}
			if opts.NoColor || cfg.Script.NoColor {
				color.NoColor = true
			}
			opts.deps, err = initializer.InitializeDependencies(cfg, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "environment file to load")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))

	return cmd
}
