package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/skillbus/internal/config"
	"github.com/hazyhaar/skillbus/internal/fastfilter"
)

func newInsertsCommand(root *RootOptions) *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "inserts",
		Short: "List the inserts defined in one scope's configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := scopePath(root, scope)
			if err != nil {
				return fail(err)
			}
			cf, err := config.ReadFile(path)
			if err != nil {
				return fail(err)
			}
			if len(cf.Inserts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no inserts)")
				return nil
			}
			for name, ins := range cf.Inserts {
				handler := ins.Handler
				if handler == "" {
					handler = "(static)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s handler=%-20s conditions=%d\n", name, handler, len(ins.Conditions))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "project", "which file to read: global or project")
	return cmd
}

func scopePath(root *RootOptions, scope string) (string, error) {
	workDir, err := root.workDir()
	if err != nil {
		return "", err
	}
	paths := fastfilter.Resolve(workDir, osGetenv)
	switch scope {
	case "project":
		return paths.Project, nil
	case "global":
		return paths.Global, nil
	default:
		return "", fmt.Errorf("--scope must be \"global\" or \"project\"")
	}
}
