package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/skillbus/internal/dispatch"
)

func newSimulateCommand(root *RootOptions) *cobra.Command {
	var timing string

	cmd := &cobra.Command{
		Use:   "simulate <skill>",
		Short: "Run the dispatch pipeline against a skill name without a live host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := root.workDir()
			if err != nil {
				return fail(err)
			}

			kind := dispatch.EventToolPre
			switch timing {
			case "pre":
				kind = dispatch.EventToolPre
			case "post":
				kind = dispatch.EventToolPost
			default:
				return fmt.Errorf("--timing must be \"pre\" or \"post\"")
			}

			stdin, err := json.Marshal(struct {
				ToolName  string `json:"tool_name"`
				ToolInput struct {
					Skill string `json:"skill"`
				} `json:"tool_input"`
				Cwd string `json:"cwd"`
			}{
				ToolName: "Skill",
				ToolInput: struct {
					Skill string `json:"skill"`
				}{Skill: args[0]},
				Cwd: workDir,
			})
			if err != nil {
				return fail(err)
			}

			start := time.Now()
			resp := dispatch.Run(kind, stdin, dispatch.Deps{
				Getenv:  os.Getenv,
				Now:     start,
				Elapsed: func() time.Duration { return time.Since(start) },
			})

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fail(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&timing, "timing", "pre", "which timing to simulate: pre or post")
	return cmd
}
