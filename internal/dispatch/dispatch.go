// Package dispatch implements C9's glue: decoding the host's event, routing
// it through C1-C8 in order, and producing one response. This is dispatch's
// top-level orchestration; everything here is pure composition of the
// lower packages, which is why Run takes its clock and environment as
// arguments instead of calling time.Now/os.Getenv itself.
package dispatch

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/skillbus/internal/completion"
	"github.com/hazyhaar/skillbus/internal/condition"
	"github.com/hazyhaar/skillbus/internal/config"
	"github.com/hazyhaar/skillbus/internal/fastfilter"
	"github.com/hazyhaar/skillbus/internal/matcher"
	"github.com/hazyhaar/skillbus/internal/model"
	"github.com/hazyhaar/skillbus/internal/output"
	"github.com/hazyhaar/skillbus/internal/resolve"
	"github.com/hazyhaar/skillbus/internal/telemetry"
)

// EventKind names the three shapes C9 accepts, per §6.
type EventKind int

const (
	EventToolPre EventKind = iota
	EventToolPost
	EventPromptSubmit
)

// rawEvent mirrors the host's stdin JSON shape for all three event kinds.
// The completion signal's tool_input.args is the literal string the model
// was told to pass (§4.1), e.g. "plan:new --depth 1" — not a JSON object.
type rawEvent struct {
	ToolName  string `json:"tool_name"`
	ToolInput struct {
		Skill string `json:"skill"`
		Args  string `json:"args,omitempty"`
	} `json:"tool_input"`
	Cwd    string `json:"cwd"`
	Prompt string `json:"prompt"`
}

// builtinPromptCommands are stripped from the prompt-monitor path, per §4.9.
var builtinPromptCommands = map[string]bool{
	"help": true, "clear": true, "compact": true, "init": true,
	"login": true, "logout": true, "config": true, "status": true,
	"doctor": true, "memory": true, "cost": true, "tasks": true,
}

// nudgeMessage is the one user-visible message for a project with no
// configuration anywhere (§7 user-visible failures).
const nudgeMessage = "skill-bus: no configuration found for this project or user. Run `skillbusctl add-insert` to get started."

// warnAfter is the elapsed wall-clock past which dispatch warns that it is
// approaching the host's 5s kill ceiling (§4.9 Timeout discipline).
const warnAfter = 4 * time.Second

// Deps bundles the ambient inputs Run needs so tests can substitute them.
type Deps struct {
	Getenv func(string) string
	Now    time.Time
	// Elapsed, if non-nil, is called once near the end of Run to decide
	// whether the 4s warning fires; production wires in time.Since(start).
	Elapsed func() time.Duration
}

// Run decodes stdin per kind, routes it through C1-C8, and returns the
// response to marshal to stdout. It never returns an error: every internal
// fault degrades to a warning inside the returned Response, per §7's
// "dispatch path is declared infallible by contract".
func Run(kind EventKind, stdin []byte, deps Deps) output.Response {
	diag := &model.Diagnostics{}

	var ev rawEvent
	if err := json.Unmarshal(stdin, &ev); err != nil {
		return output.Response{}
	}

	source := matcher.SourceTool
	var skill, eventName string
	switch kind {
	case EventToolPre, EventToolPost:
		skill = ev.ToolInput.Skill
		if kind == EventToolPre {
			eventName = output.EventPreTool
		} else {
			eventName = output.EventPostTool
		}
	case EventPromptSubmit:
		source = matcher.SourcePrompt
		eventName = output.EventUserPromptSubmit
		skill = extractPromptCommand(ev.Prompt)
		if skill == "" {
			return output.Response{}
		}
		if builtinPromptCommands[skill] || skill == fastfilter.ReservedCompletionSkill {
			return output.Response{}
		}
	}

	if skill == "" || ev.Cwd == "" {
		return output.Response{}
	}

	paths := fastfilter.Resolve(ev.Cwd, deps.Getenv)

	if skill == fastfilter.ReservedCompletionSkill {
		if kind == EventToolPost {
			// Post-timing invocations of the completion signal are no-ops (§4.1).
			return output.Response{}
		}
		return runCompletion(ev, paths, eventName, source, deps, diag)
	}

	if kind == EventPromptSubmit {
		// The prompt-monitor path is gated on monitorSlashCommands, which
		// lives in configuration; a cheap fast-filter verdict can't see it,
		// so the full config is loaded regardless of C1's verdict here.
		view := config.Load(paths, diag)
		if !view.Settings.MonitorSlashCommands {
			return output.Response{}
		}
		return dispatchTiming(view, paths, skill, model.TimingPre, source, eventName, deps, diag)
	}

	verdict := fastfilter.Check(paths, skill, true)
	switch verdict {
	case fastfilter.RejectSilently:
		return output.Response{}
	case fastfilter.EmitNudge:
		fastfilter.MarkNudgeShown(paths)
		return output.Response{SystemMessage: nudgeMessage}
	}

	view := config.Load(paths, diag)

	timing := model.TimingPre
	if kind == EventToolPost {
		timing = model.TimingPost
	}
	resp := dispatchTiming(view, paths, skill, timing, source, eventName, deps, diag)

	if len(resp.SystemMessage) == 0 && resp.HookSpecificOutput == nil && verdict == fastfilter.LogNoCoverage {
		if view.Settings.Telemetry && view.Settings.ObserveUnmatched {
			sourceLabel := sourceLabelFor(kind)
			sink := telemetrySink(view, paths)
			sink.Write(telemetry.Event{Kind: telemetry.EventNoMatch, Skill: skill, Source: sourceLabel}, deps.Now)
		}
	}

	return resp
}

func sourceLabelFor(kind EventKind) string {
	switch kind {
	case EventToolPre, EventToolPost:
		return "tool"
	case EventPromptSubmit:
		return "prompt-fast-path"
	}
	return "fast-path"
}

// dispatchTiming runs C4 (candidate selection), C3 (condition filtering),
// C4's ceiling, C5 (text resolution), C6 (pre-phase augmentation), C8
// (match/condition-skip telemetry), and C7 (response composition) for one
// timing value.
func dispatchTiming(view model.EffectiveView, paths fastfilter.Paths, skill string, timing model.Timing, source matcher.Source, eventName string, deps Deps, diag *model.Diagnostics) output.Response {
	sink := telemetrySink(view, paths)

	candidates := matcher.CandidatesFor(view.Subscriptions, skill, timing, source, view.Settings.CompletionHooks, diag)

	env := condition.NewEnvironment(workDirFromPaths(paths))
	env.Getenv = deps.Getenv
	evaluator := condition.New(env, diag)

	var matched []model.Subscription
	var skippedInsertNames []string
	for _, s := range candidates {
		ins, hasInsert := view.Inserts[s.Insert]
		if !hasInsert {
			diag.Warnf("subscription references unknown insert %q", s.Insert)
		}

		var insertConds []model.Condition
		if hasInsert && s.Inherits() {
			insertConds = ins.Conditions
		}

		ok, skipList, skipIdx := evalStacked(evaluator, insertConds, s.Conditions)
		if !ok {
			skippedInsertNames = append(skippedInsertNames, s.Insert)
			if view.Settings.Telemetry {
				sink.Write(telemetry.Event{
					Kind: telemetry.EventConditionSkip, Skill: skill, Insert: s.Insert,
					Pattern: s.On, Which: skipList, Index: skipIdx,
				}, deps.Now)
			}
			continue
		}
		matched = append(matched, s)
	}

	result := matcher.Match(matched, view.Settings.MaxMatchesPerSkill, diag)

	fired := make([]output.Fired, 0, len(result.Fired))
	for _, s := range result.Fired {
		ins := view.Inserts[s.Insert]
		text := resolve.Resolve(ins, workDirFromPaths(paths), diag)
		fired = append(fired, output.Fired{Subscription: s, Text: text})
		if view.Settings.Telemetry {
			sink.Write(telemetry.Event{
				Kind: telemetry.EventMatch, Skill: skill, Insert: s.Insert,
				Timing: string(timing), Source: sourceLabelForMatcher(source),
			}, deps.Now)
		}
	}

	var completionInstruction string
	if timing == model.TimingPre {
		if completion.ShouldAugment(view.Subscriptions, skill, source, view.Settings.CompletionHooks) {
			depth := readDepth(deps.Getenv)
			completionInstruction = completion.Instruction(skill, depth)
		}
	}

	if deps.Elapsed != nil && deps.Elapsed() > warnAfter {
		diag.Warnf("dispatch approaching the host's timeout ceiling; context may be incomplete")
	}

	return output.Build(eventName, fired, skippedInsertNames, completionInstruction, view.Settings.ShowConsoleEcho, showSkips(view, deps.Getenv), diag)
}

func showSkips(view model.EffectiveView, getenv func(string) string) bool {
	return view.Settings.ShowConditionSkips || getenv("SKILLBUS_DEBUG") != ""
}

func sourceLabelForMatcher(s matcher.Source) string {
	if s == matcher.SourcePrompt {
		return "prompt"
	}
	return "tool"
}

// evalStacked evaluates insert conditions then subscription conditions,
// left-to-right, short-circuiting on first false (§4.3 Stacking policy).
// It returns which list and index the failure occurred at for telemetry.
func evalStacked(ev *condition.Evaluator, insertConds, subConds []model.Condition) (ok bool, which string, index int) {
	for i, c := range insertConds {
		if !ev.Eval(c) {
			return false, "insert-level", i
		}
	}
	for i, c := range subConds {
		if !ev.Eval(c) {
			return false, "subscription-level", i
		}
	}
	return true, "", 0
}

// runCompletion handles the reserved completion signal: args parsing, depth
// bound check, completion-timing dispatch against the completed skill, and
// the skill-complete telemetry event (§4.6 Completion-phase dispatch).
func runCompletion(ev rawEvent, paths fastfilter.Paths, eventName string, source matcher.Source, deps Deps, diag *model.Diagnostics) output.Response {
	completed, depth, ok := completedSkillFromArgs(ev.ToolInput.Args)
	if !ok {
		return output.Response{}
	}

	if completion.ChainExhausted(depth) {
		diag.Warnf("chain depth limit reached (%d)", depth)
		return output.Build(eventName, nil, nil, "", false, false, diag)
	}

	// The depth just parsed from args is the source of truth; stash N+1
	// behind DepthEnvVar only as the intra-process handoff for anything
	// downstream in this same dispatch that reads it (§4.1's "hands off to
	// C6 ... with chain depth N+1").
	nextDepth := depth + 1
	chainDeps := deps
	chainDeps.Getenv = func(key string) string {
		if key == completion.DepthEnvVar {
			return strconv.Itoa(nextDepth)
		}
		return deps.Getenv(key)
	}

	view := config.Load(paths, diag)
	resp := dispatchTiming(view, paths, completed, model.TimingComplete, source, eventName, chainDeps, diag)
	if view.Settings.Telemetry {
		sink := telemetrySink(view, paths)
		sink.Write(telemetry.Event{Kind: telemetry.EventSkillComplete, Skill: completed}, deps.Now)
	}
	return resp
}

// completedSkillFromArgs parses the completion signal's arguments string —
// the completed skill name followed optionally by a "--depth N" token
// (§4.1) — not a JSON object. ok is false when args is empty, the first
// token starts with "--" (no skill name), or nothing remains after
// stripping the depth token.
func completedSkillFromArgs(raw string) (skill string, depth int, ok bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", 0, false
	}
	if strings.HasPrefix(fields[0], "--") {
		return "", 0, false
	}

	for i := 1; i < len(fields); i++ {
		if fields[i] != "--depth" {
			continue
		}
		if i+1 < len(fields) {
			if n, err := strconv.Atoi(fields[i+1]); err == nil && n >= 0 {
				depth = n
			}
		}
		break
	}

	return fields[0], depth, true
}

func readDepth(getenv func(string) string) int {
	v := getenv(completion.DepthEnvVar)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func extractPromptCommand(prompt string) string {
	trimmed := prompt
	if len(trimmed) == 0 || trimmed[0] != '/' {
		return ""
	}
	trimmed = trimmed[1:]
	for i, r := range trimmed {
		if r == ' ' || r == '\t' || r == '\n' {
			return trimmed[:i]
		}
	}
	return trimmed
}

func telemetrySink(view model.EffectiveView, paths fastfilter.Paths) *telemetry.Sink {
	path := view.Settings.TelemetryPath
	if path == "" {
		path = defaultTelemetryPath(paths)
	} else if !isAbs(path) {
		path = joinPath(workDirFromPaths(paths), path)
	}
	return telemetry.NewSink(path, strconv.Itoa(os.Getpid()), view.Settings.MaxLogSizeKB, view.Settings.Telemetry)
}

func defaultTelemetryPath(paths fastfilter.Paths) string {
	return joinPath(paths.StateDir, "telemetry.jsonl")
}
