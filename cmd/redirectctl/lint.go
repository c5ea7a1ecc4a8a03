package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pscheid92/redirector/internal/adapter/memory"
	"github.com/pscheid92/redirector/internal/redirect"
)

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <rules.yaml>",
		Short: "Report data-integrity problems in a rules file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := memory.LoadFile(args[0])
			if err != nil {
				return err
			}

			findings := redirect.Audit(store.Aliases(), store.Rules())
			out := cmd.OutOrStdout()
			for _, f := range findings {
				_, _ = fmt.Fprintln(out, f.String())
			}

			if redirect.HasErrors(findings) {
				return fmt.Errorf("%s: data-integrity errors found", args[0])
			}
			_, _ = fmt.Fprintf(out, "%s: %d aliases, %d rules, %d warnings\n",
				args[0], len(store.Aliases()), len(store.Rules()), len(findings))
			return nil
		},
	}
}
