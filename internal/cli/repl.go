package cli

import (
	"github.com/spf13/cobra"

	"github.com/hazyhaar/skillbus/internal/devconsole"
)

func newReplCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Open an interactive console that hot-reloads configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := root.workDir()
			if err != nil {
				return fail(err)
			}
			console, err := devconsole.New(workDir)
			if err != nil {
				return fail(err)
			}
			return console.Run()
		},
	}
}
