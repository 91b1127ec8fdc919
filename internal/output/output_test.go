package output

import (
	"testing"

	"github.com/hazyhaar/skillbus/internal/model"
)

func TestBuildPassThroughWhenNothingFires(t *testing.T) {
	r := Build(EventPreTool, nil, nil, "", true, false, &model.Diagnostics{})
	if r.HookSpecificOutput != nil || r.SystemMessage != "" {
		t.Errorf("expected a pass-through response, got %+v", r)
	}
	data, err := Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Errorf("expected \"{}\", got %q", data)
	}
}

func TestBuildJoinsFiredTextInOrder(t *testing.T) {
	fired := []Fired{
		{Subscription: model.Subscription{Insert: "a"}, Text: "first"},
		{Subscription: model.Subscription{Insert: "b"}, Text: ""},
		{Subscription: model.Subscription{Insert: "c"}, Text: "third"},
	}
	r := Build(EventPreTool, fired, nil, "", false, false, &model.Diagnostics{})
	want := "first\n\nthird"
	if r.HookSpecificOutput == nil || r.HookSpecificOutput.AdditionalContext != want {
		t.Errorf("got %+v, want context %q", r.HookSpecificOutput, want)
	}
}

func TestBuildAppendsCompletionInstructionLast(t *testing.T) {
	fired := []Fired{{Subscription: model.Subscription{Insert: "a"}, Text: "body"}}
	r := Build(EventPreTool, fired, nil, "do the thing next", false, false, &model.Diagnostics{})
	want := "body\n\ndo the thing next"
	if r.HookSpecificOutput.AdditionalContext != want {
		t.Errorf("got %q, want %q", r.HookSpecificOutput.AdditionalContext, want)
	}
}

func TestBuildEchoAndWarnings(t *testing.T) {
	fired := []Fired{{Subscription: model.Subscription{Insert: "a"}, Text: "body"}}
	diag := &model.Diagnostics{}
	diag.Warnf("something was off")
	r := Build(EventPreTool, fired, nil, "", true, false, diag)
	if r.SystemMessage == "" {
		t.Fatal("expected a system message with echo and warning")
	}
	if !contains(r.SystemMessage, "1 sub(s) matched") || !contains(r.SystemMessage, "something was off") {
		t.Errorf("system message missing expected content: %q", r.SystemMessage)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
