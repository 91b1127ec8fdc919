package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/skillbus/internal/fastfilter"
	"github.com/hazyhaar/skillbus/internal/telemetry"
)

func newStatsCommand(root *RootOptions) *cobra.Command {
	var session string
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the telemetry log",
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := root.workDir()
			if err != nil {
				return fail(err)
			}
			paths := fastfilter.Resolve(workDir, osGetenv)
			logPath := paths.StateDir + "/telemetry.jsonl"

			events, err := telemetry.ReadEvents(logPath)
			if err != nil {
				return fail(err)
			}

			cutoff := time.Time{}
			if days > 0 {
				cutoff = time.Now().AddDate(0, 0, -days)
			}

			matches := map[string]int{}
			skips := map[string]int{}
			noCoverage := map[string]bool{}
			total := 0
			for _, ev := range events {
				if session != "" && ev.Session != session {
					continue
				}
				if !cutoff.IsZero() && ev.Timestamp.Before(cutoff) {
					continue
				}
				total++
				switch ev.Kind {
				case telemetry.EventMatch:
					matches[ev.Skill]++
				case telemetry.EventConditionSkip:
					skips[ev.Insert]++
				case telemetry.EventNoMatch:
					noCoverage[ev.Skill] = true
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "events considered: %d\n", total)
			fmt.Fprintln(out, "matches by skill:")
			printCounts(out, matches)
			fmt.Fprintln(out, "condition skips by insert:")
			printCounts(out, skips)
			fmt.Fprintln(out, "skills with no coverage:")
			names := make([]string, 0, len(noCoverage))
			for k := range noCoverage {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, n := range names {
				fmt.Fprintf(out, "  %s\n", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "restrict to one session ID")
	cmd.Flags().IntVar(&days, "days", 0, "restrict to the last N days (0 = all time)")
	return cmd
}

func printCounts(w io.Writer, counts map[string]int) {
	type kv struct {
		k string
		v int
	}
	items := make([]kv, 0, len(counts))
	for k, v := range counts {
		items = append(items, kv{k, v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].v != items[j].v {
			return items[i].v > items[j].v
		}
		return items[i].k < items[j].k
	})
	for _, it := range items {
		fmt.Fprintf(w, "  %s: %d\n", it.k, it.v)
	}
}
