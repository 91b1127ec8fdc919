package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/skillbus/internal/config"
	"github.com/hazyhaar/skillbus/internal/model"
)

func newAddInsertCommand(root *RootOptions) *cobra.Command {
	var (
		name, text, on, when, scope, conditionsJSON string
	)

	cmd := &cobra.Command{
		Use:   "add-insert",
		Short: "Add or replace an insert, optionally with a subscription routing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || text == "" {
				return fmt.Errorf("--name and --text are required")
			}
			if !model.ValidTiming(when) && when != "" {
				return fmt.Errorf("--when must be one of pre, post, complete")
			}

			path, err := scopePath(root, scope)
			if err != nil {
				return fail(err)
			}
			cf, err := config.ReadFile(path)
			if err != nil {
				return fail(err)
			}

			var conditions []model.Condition
			if conditionsJSON != "" {
				if err := json.Unmarshal([]byte(conditionsJSON), &conditions); err != nil {
					return fail(fmt.Errorf("--conditions: %w", err))
				}
			}

			if cf.Inserts == nil {
				cf.Inserts = map[string]model.Insert{}
			}
			cf.Inserts[name] = model.Insert{Text: text, Conditions: conditions}

			if on != "" && when != "" {
				cf.Subscriptions = append(cf.Subscriptions, model.Subscription{
					Insert: name,
					On:     on,
					When:   model.Timing(when),
				})
			}

			if err := config.WriteFile(path, cf); err != nil {
				return fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: added insert %q\n", path, name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "insert name")
	cmd.Flags().StringVar(&text, "text", "", "insert static text")
	cmd.Flags().StringVar(&on, "on", "", "skill-name glob pattern for a subscription")
	cmd.Flags().StringVar(&when, "when", "", "timing for a subscription: pre, post, or complete")
	cmd.Flags().StringVar(&scope, "scope", "project", "which file to edit: global or project")
	cmd.Flags().StringVar(&conditionsJSON, "conditions", "", "JSON array of condition records")
	return cmd
}
