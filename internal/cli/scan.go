package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/skillbus/internal/config"
)

// newScanCommand is a deliberately thin stub. §6 names scan only as a
// member of the CLI surface shared with dispatch's semantics; the spec
// does not define what it inspects beyond the interface list, so this
// reports the obvious, cheap thing (whether a project config file parses)
// rather than inventing a larger feature.
func newScanCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Check the project configuration file for syntax errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := scopePath(root, "project")
			if err != nil {
				return fail(err)
			}
			if _, err := config.ReadFile(path); err != nil {
				return fail(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path, "OK")
			return nil
		},
	}
}
