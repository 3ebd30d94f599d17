package cli

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newResolveCommand(opts *rootOptions) *cobra.Command {
	var (
		flags requestFlags
		dump  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <cartridgeId>",
		Short: "Print the resolved context of a cartridge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(opts, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, err := rt.svc.Resolver().Resolve(args[0], flags.currency, flags.direction)
			if err != nil {
				return err
			}

			if dump {
				spew.Fdump(cmd.OutOrStdout(), ctx)
				return nil
			}

			data, err := yaml.Marshal(ctx)
			if err != nil {
				return fmt.Errorf("failed to marshal context: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the context with go-spew")

	return cmd
}
