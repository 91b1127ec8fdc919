// Package cli implements skillbusctl, the external collaborator described
// in §6: a developer-facing tool that shares dispatch's merge/override
// semantics but owns every write path. Dispatch itself never writes
// configuration; this package is the only place that does, and it refuses
// to touch a file it cannot parse (§5 Shared resources).
package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// RootOptions holds flags shared by every subcommand.
type RootOptions struct {
	Cwd string
}

// Color reports whether ANSI color should be used for this process's
// stdout, gated on whether it's a real terminal.
func (o *RootOptions) Color() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// NewRootCommand builds the skillbusctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "skillbusctl",
		Short:         "Inspect and edit skill-bus hook configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Cwd, "cwd", "", "project directory (defaults to the current directory)")

	cmd.AddCommand(
		newListCommand(opts),
		newSimulateCommand(opts),
		newSkillsCommand(opts),
		newStatusCommand(opts),
		newInsertsCommand(opts),
		newScanCommand(opts),
		newSetCommand(opts),
		newAddInsertCommand(opts),
		newStatsCommand(opts),
		newReplCommand(opts),
	)

	return cmd
}

func (o *RootOptions) workDir() (string, error) {
	if o.Cwd != "" {
		return o.Cwd, nil
	}
	return os.Getwd()
}

func fail(err error) error {
	return fmt.Errorf("skillbusctl: %w", err)
}
