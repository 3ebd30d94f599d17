// Package cli implements the cartridge-engine command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cartridge-engine",
		Short: "Cartridge driven message transformation engine",
		Long: `cartridge-engine validates, enriches and remaps JSON payloads according to
declarative YAML cartridges, and serves the transformation over HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the service config file")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newTransformCommand(opts))
	cmd.AddCommand(newResolveCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))

	return cmd
}

// Execute runs the root command.
func Execute(version string) error {
	err := NewRootCommand(version).Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	return nil
}
