// Package cli holds the ordemctl operator commands.
package cli

import "github.com/spf13/cobra"

// RootCmd assembles every ordemctl subcommand.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ordemctl",
		Short:        "Operator tools for the Ordem Paranormal campaign backend",
		SilenceUsage: true,
	}
	root.AddCommand(RollCmd())
	root.AddCommand(TokenCmd())
	root.AddCommand(HashPasswordCmd())
	root.AddCommand(SeedCmd())
	root.AddCommand(MigrateCmd())
	return root
}
