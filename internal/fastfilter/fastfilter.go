// Package fastfilter implements C1: a cheap, pre-parse verdict on whether
// the rest of dispatch needs to run at all. It never instantiates the JSON
// parser or the merger — it scans raw configuration bytes for substrings.
// This is a latency device (§9), not a correctness boundary: a false
// "proceed" only costs a full C2-C7 pass; a false "reject" is the bug to
// avoid, so the scan is deliberately over-approximate.
package fastfilter

import (
	"bytes"
	"os"
	"path/filepath"
)

// Verdict is C1's decision.
type Verdict int

const (
	// Proceed means configuration plausibly matches; run C2-C7.
	Proceed Verdict = iota
	// RejectSilently means either no configuration exists anywhere and the
	// first-run nudge already fired for this project, or no configuration
	// file plausibly matches the skill and the caller passed no
	// observe-unmatched hint.
	RejectSilently
	// EmitNudge means this is the first invocation in a project with no
	// configuration file at all.
	EmitNudge
	// LogNoCoverage means proceed would fail but telemetry wants to record it.
	LogNoCoverage
)

const (
	configFileName   = "hooks.json"
	stateDirName     = ".skillbus"
	nudgeMarkerName  = "nudge-shown"
)

// Paths resolves the on-disk locations fast-filter and the rest of dispatch
// use: global config (per-user), project config (per-cwd), and the
// project's hidden state directory.
type Paths struct {
	Global      string
	Project     string
	StateDir    string
	NudgeMarker string
}

// Resolve computes file locations relative to workDir and the user's home
// directory. An override environment variable lets tests (and the CLI
// collaborator) redirect the global configuration path (§6).
func Resolve(workDir string, getenv func(string) string) Paths {
	global := filepath.Join(homeConfigDir(getenv), configFileName)
	if override := getenv("SKILLBUS_GLOBAL_CONFIG"); override != "" {
		global = override
	}
	stateDir := filepath.Join(workDir, stateDirName)
	return Paths{
		Global:      global,
		Project:     filepath.Join(workDir, configFileName),
		StateDir:    stateDir,
		NudgeMarker: filepath.Join(stateDir, nudgeMarkerName),
	}
}

func homeConfigDir(getenv func(string) string) string {
	if home := getenv("HOME"); home != "" {
		return filepath.Join(home, stateDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return stateDirName
	}
	return filepath.Join(home, stateDirName)
}

// Check performs the fast-path decision for a tool-pre/tool-post/prompt
// skill name. observeUnmatchedHint lets the caller pass a best-effort read
// of the observeUnmatched+telemetry settings without a full parse (C1 is
// explicitly allowed to do cheap substring probing of settings too).
func Check(paths Paths, skill string, observeUnmatchedHint bool) Verdict {
	globalBytes, gErr := os.ReadFile(paths.Global)
	projectBytes, pErr := os.ReadFile(paths.Project)

	if gErr != nil && pErr != nil {
		if _, err := os.Stat(paths.NudgeMarker); err == nil {
			return RejectSilently
		}
		return EmitNudge
	}

	if plausiblyMatches(globalBytes, skill) || plausiblyMatches(projectBytes, skill) {
		return Proceed
	}

	if observeUnmatchedHint {
		return LogNoCoverage
	}
	return RejectSilently
}

// plausiblyMatches is the over-approximate byte scan: true if the skill
// name appears literally anywhere in the file, or if the file contains any
// wildcard subscription pattern (a "*" following an "on" key) that could
// match any skill name. Neither check parses JSON.
func plausiblyMatches(data []byte, skill string) bool {
	if len(data) == 0 {
		return false
	}
	if skill != "" && bytes.Contains(data, []byte(skill)) {
		return true
	}
	return containsWildcardOn(data)
}

// containsWildcardOn looks for an "on" field whose string value contains a
// "*", without building a JSON AST: scan for `"on"` then the next quoted
// string literal after it and check it for '*'.
func containsWildcardOn(data []byte) bool {
	const key = `"on"`
	idx := 0
	for {
		rel := bytes.Index(data[idx:], []byte(key))
		if rel < 0 {
			return false
		}
		pos := idx + rel + len(key)
		// Skip whitespace and the colon.
		for pos < len(data) && (data[pos] == ' ' || data[pos] == '\t' || data[pos] == '\n' || data[pos] == '\r' || data[pos] == ':') {
			pos++
		}
		if pos < len(data) && data[pos] == '"' {
			end := bytes.IndexByte(data[pos+1:], '"')
			if end >= 0 {
				value := data[pos+1 : pos+1+end]
				if bytes.ContainsRune(value, '*') {
					return true
				}
			}
		}
		idx = pos + 1
		if idx >= len(data) {
			return false
		}
	}
}

// MarkNudgeShown creates the project's hidden state directory and a marker
// file so future invocations stay silent. Best-effort: failure is not fatal.
func MarkNudgeShown(paths Paths) {
	if err := os.MkdirAll(paths.StateDir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(paths.NudgeMarker, []byte{}, 0o644)
}

// ReservedCompletionSkill is the synthetic skill name the host invokes to
// signal a previous skill's work is complete (§4.1, glossary "Completion
// signal").
const ReservedCompletionSkill = "skill-bus:complete"
