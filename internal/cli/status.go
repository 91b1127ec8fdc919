package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/skillbus/internal/config"
	"github.com/hazyhaar/skillbus/internal/fastfilter"
	"github.com/hazyhaar/skillbus/internal/model"
	"github.com/hazyhaar/skillbus/internal/telemetry"
)

func newStatusCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the effective settings, file locations, and telemetry log size",
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := root.workDir()
			if err != nil {
				return fail(err)
			}
			paths := fastfilter.Resolve(workDir, os.Getenv)
			diag := &model.Diagnostics{}
			view := config.Load(paths, diag)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "global config:  %s\n", paths.Global)
			fmt.Fprintf(out, "project config: %s\n", paths.Project)
			fmt.Fprintf(out, "enabled:                %v\n", view.Settings.Enabled)
			fmt.Fprintf(out, "maxMatchesPerSkill:     %d\n", view.Settings.MaxMatchesPerSkill)
			fmt.Fprintf(out, "showConsoleEcho:        %v\n", view.Settings.ShowConsoleEcho)
			fmt.Fprintf(out, "disableGlobal:          %v\n", view.Settings.DisableGlobal)
			fmt.Fprintf(out, "monitorSlashCommands:   %v\n", view.Settings.MonitorSlashCommands)
			fmt.Fprintf(out, "completionHooks:        %v\n", view.Settings.CompletionHooks)
			fmt.Fprintf(out, "showConditionSkips:     %v\n", view.Settings.ShowConditionSkips)
			fmt.Fprintf(out, "telemetry:              %v\n", view.Settings.Telemetry)
			fmt.Fprintf(out, "observeUnmatched:       %v\n", view.Settings.ObserveUnmatched)
			fmt.Fprintf(out, "maxLogSizeKB:           %d\n", view.Settings.MaxLogSizeKB)
			fmt.Fprintf(out, "inserts:                %d\n", len(view.Inserts))
			fmt.Fprintf(out, "subscriptions:          %d\n", len(view.Subscriptions))

			logPath := view.Settings.TelemetryPath
			if logPath == "" {
				logPath = paths.StateDir + "/telemetry.jsonl"
			}
			sink := telemetry.NewSink(logPath, "", view.Settings.MaxLogSizeKB, true)
			fmt.Fprintf(out, "telemetry log:          %s (%s)\n", logPath, sink.SizeReport())

			printDiagnostics(cmd, diag)
			return nil
		},
	}
}
