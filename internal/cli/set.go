package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/skillbus/internal/config"
	"github.com/hazyhaar/skillbus/internal/model"
)

// recognizedSettings mirrors §6's settings table, used only to reject typos
// early with a clearer message than a silent no-op merge-time warning.
var recognizedSettings = map[string]bool{
	"enabled": true, "maxMatchesPerSkill": true, "showConsoleEcho": true,
	"disableGlobal": true, "monitorSlashCommands": true, "completionHooks": true,
	"showConditionSkips": true, "telemetry": true, "observeUnmatched": true,
	"telemetryPath": true, "maxLogSizeKB": true,
}

func newSetCommand(root *RootOptions) *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Set one settings field in a scope's configuration file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, value := args[0], args[1]
			if !recognizedSettings[name] {
				return fmt.Errorf("unrecognized setting %q", name)
			}

			path, err := scopePath(root, scope)
			if err != nil {
				return fail(err)
			}
			cf, err := config.ReadFile(path)
			if err != nil {
				return fail(err)
			}

			raw, err := literalJSON(value)
			if err != nil {
				return fail(err)
			}
			if cf.Settings == nil {
				cf.Settings = map[string]model.RawValue{}
			}
			cf.Settings[name] = model.RawValue{Raw: raw}

			if err := config.WriteFile(path, cf); err != nil {
				return fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s = %s\n", path, name, string(raw))
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "project", "which file to edit: global or project")
	return cmd
}

// literalJSON interprets a bare CLI value as JSON when it parses as one
// (true, false, a number, a quoted string, null); otherwise it's treated as
// an unquoted string literal, since "skillbusctl set telemetryPath foo.jsonl"
// is the expected shape, not "skillbusctl set telemetryPath '\"foo.jsonl\"'".
func literalJSON(value string) ([]byte, error) {
	var probe any
	if err := json.Unmarshal([]byte(value), &probe); err == nil {
		return []byte(value), nil
	}
	return json.Marshal(value)
}
