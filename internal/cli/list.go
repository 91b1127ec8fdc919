package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/skillbus/internal/config"
	"github.com/hazyhaar/skillbus/internal/fastfilter"
	"github.com/hazyhaar/skillbus/internal/model"
)

func newListCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the effective, merged subscription order",
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := root.workDir()
			if err != nil {
				return fail(err)
			}
			paths := fastfilter.Resolve(workDir, os.Getenv)
			diag := &model.Diagnostics{}
			view := config.Load(paths, diag)

			if len(view.Subscriptions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no subscriptions)")
			}
			for i, s := range view.Subscriptions {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. [%s] %-30s on=%-30s when=%-8s enabled=%v\n",
					i+1, s.Scope, s.Insert, s.On, s.When, s.IsEnabled())
			}
			printDiagnostics(cmd, diag)
			return nil
		},
	}
}

func printDiagnostics(cmd *cobra.Command, diag *model.Diagnostics) {
	for _, w := range diag.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}
	for _, a := range diag.Advisories {
		fmt.Fprintln(cmd.ErrOrStderr(), "note:", a)
	}
}
