// Command redirectctl inspects redirect data without serving traffic.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "redirectctl",
		Short:        "Inspect and validate domain redirect rules",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newLintCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
