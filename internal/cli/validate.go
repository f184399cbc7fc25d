package cli

import (
	"fmt"

	"github.com/amirasaad/ledgerbus/pkg/script"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <script.yaml>",
		Short: "Check a script without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := script.Load(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "script %q is valid: %d steps\n", s.Name, len(s.Steps))
			return err
		},
	}
}
