package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/skillbus/internal/config"
	"github.com/hazyhaar/skillbus/internal/fastfilter"
	"github.com/hazyhaar/skillbus/internal/model"
)

func newSkillsCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "List every distinct skill-name pattern referenced by a subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := root.workDir()
			if err != nil {
				return fail(err)
			}
			paths := fastfilter.Resolve(workDir, os.Getenv)
			diag := &model.Diagnostics{}
			view := config.Load(paths, diag)

			seen := map[string]bool{}
			var patterns []string
			for _, s := range view.Subscriptions {
				if !seen[s.On] {
					seen[s.On] = true
					patterns = append(patterns, s.On)
				}
			}
			sort.Strings(patterns)
			for _, p := range patterns {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			printDiagnostics(cmd, diag)
			return nil
		},
	}
}
