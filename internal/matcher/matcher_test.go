package matcher

import (
	"testing"

	"github.com/hazyhaar/skillbus/internal/model"
)

func subs() []model.Subscription {
	return []model.Subscription{
		{Insert: "a", On: "superpowers:writing-plans", When: model.TimingPre},
		{Insert: "b", On: "bash:*", When: model.TimingPre},
		{Insert: "c", On: "superpowers:writing-plans", When: model.TimingComplete},
	}
}

func TestCandidatesForQualifiedMatch(t *testing.T) {
	out := CandidatesFor(subs(), "superpowers:writing-plans", model.TimingPre, SourceTool, false, &model.Diagnostics{})
	if len(out) != 1 || out[0].Insert != "a" {
		t.Fatalf("expected exactly insert a to match, got %+v", out)
	}
}

func TestCandidatesForBareNameOnlyMatchesViaPrompt(t *testing.T) {
	diag := &model.Diagnostics{}
	toolOut := CandidatesFor(subs(), "writing-plans", model.TimingPre, SourceTool, false, diag)
	if len(toolOut) != 0 {
		t.Errorf("bare name should not match via tool source, got %+v", toolOut)
	}

	promptOut := CandidatesFor(subs(), "writing-plans", model.TimingPre, SourcePrompt, false, diag)
	// a matches by its trailing segment "writing-plans"; b's trailing
	// segment is "*", which matches any bare name.
	if len(promptOut) != 2 || promptOut[0].Insert != "a" || promptOut[1].Insert != "b" {
		t.Errorf("bare name should match the trailing segment via prompt source, got %+v", promptOut)
	}
}

func TestCandidatesForCompletionGatedOff(t *testing.T) {
	diag := &model.Diagnostics{}
	out := CandidatesFor(subs(), "superpowers:writing-plans", model.TimingComplete, SourceTool, false, diag)
	if len(out) != 0 {
		t.Errorf("completion subscriptions should be excluded when completion-hooks is off, got %+v", out)
	}
	out = CandidatesFor(subs(), "superpowers:writing-plans", model.TimingComplete, SourceTool, true, diag)
	if len(out) != 1 {
		t.Errorf("completion subscriptions should fire when completion-hooks is on, got %+v", out)
	}
}

func TestCandidatesForInvalidTimingWarns(t *testing.T) {
	bad := []model.Subscription{{Insert: "x", On: "*", When: "whenever"}}
	diag := &model.Diagnostics{}
	out := CandidatesFor(bad, "anything", model.TimingPre, SourceTool, false, diag)
	if len(out) != 0 {
		t.Errorf("invalid timing should exclude the subscription, got %+v", out)
	}
	if len(diag.Warnings) != 1 {
		t.Errorf("expected one warning for invalid timing, got %v", diag.Warnings)
	}
}

func TestMatchCeilingDropsAndWarns(t *testing.T) {
	candidates := []model.Subscription{
		{Insert: "a", On: "*", When: model.TimingPre},
		{Insert: "b", On: "*", When: model.TimingPre},
		{Insert: "c", On: "*", When: model.TimingPre},
		{Insert: "d", On: "*", When: model.TimingPre},
	}
	diag := &model.Diagnostics{}
	res := Match(candidates, 2, diag)
	if len(res.Fired) != 2 || res.Dropped != 2 {
		t.Fatalf("expected 2 fired and 2 dropped, got fired=%d dropped=%d", len(res.Fired), res.Dropped)
	}
	if res.Fired[0].Insert != "a" || res.Fired[1].Insert != "b" {
		t.Errorf("expected first N in list order, got %+v", res.Fired)
	}
	if len(diag.Warnings) != 1 {
		t.Errorf("expected one ceiling warning, got %v", diag.Warnings)
	}
}

func TestMatchInvalidCeilingUsesDefault(t *testing.T) {
	candidates := make([]model.Subscription, 5)
	for i := range candidates {
		candidates[i] = model.Subscription{Insert: "x", On: "*", When: model.TimingPre}
	}
	diag := &model.Diagnostics{}
	res := Match(candidates, 0, diag)
	if len(res.Fired) != defaultCeiling {
		t.Errorf("expected default ceiling %d, got %d", defaultCeiling, len(res.Fired))
	}
}

func TestHasCompletionSubscriber(t *testing.T) {
	if !HasCompletionSubscriber(subs(), "superpowers:writing-plans", SourceTool) {
		t.Error("expected a completion subscriber to be found")
	}
	if HasCompletionSubscriber(subs(), "no-such-skill", SourceTool) {
		t.Error("expected no completion subscriber for an unmatched skill")
	}
}

func TestTrailingSegment(t *testing.T) {
	cases := map[string]string{
		"superpowers:writing-plans": "writing-plans",
		"writing-plans":             "writing-plans",
		"a:b:c":                     "c",
	}
	for in, want := range cases {
		if got := trailingSegment(in); got != want {
			t.Errorf("trailingSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
