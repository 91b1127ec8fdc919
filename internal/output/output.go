// Package output implements C7: composing the firing inserts' resolved
// text, the echo line, and any warnings into one host response.
package output

import (
	"encoding/json"
	"strings"

	"github.com/hazyhaar/skillbus/internal/matcher"
	"github.com/hazyhaar/skillbus/internal/model"
)

// HookEventName values for the response envelope (§4.7, §6).
const (
	EventPreTool          = "PreToolUse"
	EventPostTool         = "PostToolUse"
	EventUserPromptSubmit = "UserPromptSubmit"
)

// Fired pairs a subscription with its resolved text, in firing order.
type Fired struct {
	Subscription model.Subscription
	Text         string
}

// Response is the JSON record emitted to stdout. Empty object (the zero
// value, marshaled) is a valid pass-through per §6.
type Response struct {
	HookSpecificOutput *HookSpecificOutput `json:"hookSpecificOutput,omitempty"`
	SystemMessage      string              `json:"systemMessage,omitempty"`
}

type HookSpecificOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext"`
}

// Build composes the final Response. fired holds resolved insert text in
// firing order; skipped names inserts whose subscription-level or
// insert-level conditions failed (used only when showConditionSkips or the
// debug env var is on); completionInstruction is C6's synthetic text,
// appended last when non-empty; warnings and advisories come from the
// shared Diagnostics accumulated across the whole dispatch.
func Build(eventName string, fired []Fired, skipped []string, completionInstruction string, showEcho, showSkips bool, diag *model.Diagnostics) Response {
	var parts []string
	for _, f := range fired {
		if f.Text != "" {
			parts = append(parts, f.Text)
		}
	}
	if completionInstruction != "" {
		parts = append(parts, completionInstruction)
	}
	context := strings.Join(parts, "\n\n")

	var sysLines []string
	if showEcho && len(fired) > 0 {
		subs := make([]model.Subscription, len(fired))
		for i, f := range fired {
			subs[i] = f.Subscription
		}
		sysLines = append(sysLines, matcher.EchoSummary(subs, skipped, showSkips))
	}
	sysLines = append(sysLines, diag.Warnings...)
	sysLines = append(sysLines, diag.Advisories...)
	systemMessage := strings.Join(sysLines, "\n")

	if context == "" && systemMessage == "" {
		return Response{}
	}

	var hso *HookSpecificOutput
	if context != "" {
		hso = &HookSpecificOutput{HookEventName: eventName, AdditionalContext: context}
	}
	return Response{HookSpecificOutput: hso, SystemMessage: systemMessage}
}

// Marshal serializes a Response to one JSON line, per §6 ("one line per
// invocation"). A pass-through Response marshals to "{}" and the caller is
// free to emit zero bytes instead, per spec's "empty object or zero-length
// stdout" equivalence.
func Marshal(r Response) ([]byte, error) {
	return json.Marshal(r)
}
