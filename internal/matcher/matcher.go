// Package matcher implements C4: selecting and ordering the subscriptions
// that fire for one skill name, timing, and source.
package matcher

import (
	"fmt"
	"path"
	"strings"

	"github.com/hazyhaar/skillbus/internal/model"
)

// Source distinguishes the prompt-monitor path (which accepts bare names)
// from tool invocation (which always matches the full qualified name).
type Source int

const (
	SourceTool Source = iota
	SourcePrompt
)

const defaultCeiling = 3

// Result is the outcome of one C4 pass: the ordered firing subscriptions
// plus the number of candidates the ceiling dropped.
type Result struct {
	Fired   []model.Subscription
	Dropped int
}

// Match applies the per-skill match ceiling to candidates, keeping the first
// ceiling entries in list order. It does not filter by pattern, timing, or
// the completion feature gate (CandidatesFor does that), and it does not
// evaluate conditions — that is C3's job, run by the caller against each
// candidate before the ceiling is applied, per §4.4's "after condition
// filtering" ordering. Match therefore expects candidates already filtered
// down to the ones that passed conditions; see CandidatesFor for the
// pattern-and-timing-only pass that feeds C3.
func Match(candidates []model.Subscription, ceiling int, diag *model.Diagnostics) Result {
	if ceiling < 1 {
		diag.Warnf("maxMatchesPerSkill must be a positive integer, using default %d", defaultCeiling)
		ceiling = defaultCeiling
	}

	if len(candidates) <= ceiling {
		return Result{Fired: candidates}
	}

	dropped := len(candidates) - ceiling
	diag.Warnf("match ceiling %d reached, dropping %d subscription(s)", ceiling, dropped)
	return Result{Fired: candidates[:ceiling], Dropped: dropped}
}

// CandidatesFor returns, in effective-list order, the subscriptions whose
// timing matches and whose pattern matches skill, before any condition
// evaluation. completionHooksOn gates out *complete*-timing subscriptions
// when the feature is off (§4.4 Feature-gate).
func CandidatesFor(subs []model.Subscription, skill string, timing model.Timing, source Source, completionHooksOn bool, diag *model.Diagnostics) []model.Subscription {
	out := make([]model.Subscription, 0, len(subs))
	for _, s := range subs {
		if !model.ValidTiming(string(s.When)) {
			diag.Warnf("subscription for insert %q has invalid timing %q, excluded", s.Insert, s.When)
			continue
		}
		if s.When != timing {
			continue
		}
		if s.When == model.TimingComplete && !completionHooksOn {
			continue
		}
		if patternMatches(s.On, skill, source) {
			out = append(out, s)
		}
	}
	return out
}

// HasCompletionSubscriber reports whether any completion-timing subscription
// pattern-matches skill, ignoring conditions — used by C6 for pre-phase
// augmentation, which fires even when no pre-timing subscriptions matched.
func HasCompletionSubscriber(subs []model.Subscription, skill string, source Source) bool {
	for _, s := range subs {
		if s.When != model.TimingComplete {
			continue
		}
		if patternMatches(s.On, skill, source) {
			return true
		}
	}
	return false
}

// patternMatches implements §4.4's pattern semantics: a standard filename
// glob over the full skill name, with the prompt-monitor path additionally
// accepting a bare unqualified skill name against either the full pattern
// or the pattern's trailing segment (the part after the last ':'). This
// bare-match behavior is deliberately isolated behind this function — per
// the spec's open question, the source behavior here is not uniquely
// determined, so keeping it in one place lets it be swapped later without
// touching the caller.
func patternMatches(pattern, skill string, source Source) bool {
	if matched, err := path.Match(pattern, skill); err == nil && matched {
		return true
	}
	if source != SourcePrompt {
		return false
	}
	trailing := trailingSegment(pattern)
	matched, err := path.Match(trailing, skill)
	return err == nil && matched
}

// trailingSegment returns the portion of a qualified pattern after the last
// ':' (e.g. "superpowers:writing-plans" -> "writing-plans"); a pattern with
// no ':' is its own trailing segment.
func trailingSegment(pattern string) string {
	if idx := strings.LastIndex(pattern, ":"); idx >= 0 {
		return pattern[idx+1:]
	}
	return pattern
}

// EchoSummary renders the one-line fired/skipped summary C7 includes in the
// system message when show-console-echo is on (§4.7).
func EchoSummary(fired []model.Subscription, skipped []string, showSkips bool) string {
	names := make([]string, len(fired))
	for i, s := range fired {
		names[i] = s.Insert
	}
	summary := fmt.Sprintf("%d sub(s) matched (%s)", len(fired), strings.Join(names, ", "))
	if showSkips && len(skipped) > 0 {
		summary += fmt.Sprintf("; skipped (%s)", strings.Join(skipped, ", "))
	}
	return summary
}
