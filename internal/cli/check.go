package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cartridge-engine/internal/diagnostic"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load every cartridge and report all configuration problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(opts, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			diags := rt.svc.Check()

			out := cmd.OutOrStdout()
			for _, group := range [][]diagnostic.Diagnostic{diags.Errors, diags.Warnings, diags.Infos} {
				for _, d := range group {
					fmt.Fprintf(out, "%-7s %s\n", d.Severity, d)
				}
			}

			if diags.HasErrors() {
				return fmt.Errorf("%d configuration errors", len(diags.Errors))
			}

			return nil
		},
	}
}
