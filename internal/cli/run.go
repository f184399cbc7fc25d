package cli

import (
	"fmt"

	"github.com/amirasaad/ledgerbus/pkg/script"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RunOptions holds flags for the run and demo commands.
type RunOptions struct {
	*RootOptions
	FailOnError bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Replay a script against a fresh ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := script.Load(args[0])
			if err != nil {
				return err
			}
			return runScript(cmd, opts, s)
		},
	}

	cmd.Flags().BoolVar(&opts.FailOnError, "fail-on-error", false, "exit non-zero when any step fails")
	return cmd
}

// NewDemoCommand creates the demo command, which runs the built-in script.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	return &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in demonstration script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := script.Demo()
			if err != nil {
				return err
			}
			return runScript(cmd, opts, s)
		},
	}
}

func runScript(cmd *cobra.Command, opts *RunOptions, s *script.Script) error {
	deps := opts.deps
	runner := script.NewRunner(deps.Ledger, deps.Logger,
		script.WithErrorPrinter(color.New(color.FgRed).FprintfFunc()),
	)

	res, err := runner.Run(cmd.Context(), s, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	failOnError := opts.FailOnError || deps.Config.Script.FailOnError
	if failOnError && res.Failures > 0 {
		return fmt.Errorf("script %q: %d of %d steps failed", s.Name, res.Failures, res.Steps)
	}
	return nil
}
