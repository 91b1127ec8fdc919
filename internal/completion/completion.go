// Package completion implements C6, the completion orchestrator: the
// two-phase lifecycle that lets a skill's subscribers run again once the
// model reports the skill's work is done.
package completion

import (
	"fmt"

	"github.com/hazyhaar/skillbus/internal/matcher"
	"github.com/hazyhaar/skillbus/internal/model"
)

// MaxDepth bounds a completion chain; depth >= MaxDepth at entry is
// chain-exhausted (§4.6 state machine).
const MaxDepth = 5

// DepthEnvVar is the reserved environment variable carrying chain depth
// (§6 Environment variables). Dispatch (C9) reads it, and for a completion
// signal overrides it with N+1 in the Getenv it hands to the completion-phase
// dispatch; this package only deals in plain ints so the env parsing stays
// at the edge.
const DepthEnvVar = "SKILLBUS_CHAIN_DEPTH"

// Instruction renders the synthetic pre-phase augmentation text the model
// receives: a directive to invoke the completion signal for skill, passing
// it the exact args token ("skill --depth N") that C1/C9 parse back out on
// the next invocation, with depth already incremented so the chain advances
// (§4.6 Depth tracking).
func Instruction(skill string, depth int) string {
	args := fmt.Sprintf("%s --depth %d", skill, depth+1)
	return fmt.Sprintf(
		"When you have finished %s, invoke the skill-bus completion signal with args %q.",
		skill, args,
	)
}

// ShouldAugment reports whether pre-phase augmentation should occur: the
// completion-hooks setting is on and at least one completion-timing
// subscription pattern-matches skill, ignoring conditions (§4.6 Pre-phase
// augmentation — conditions are re-checked at completion time, not now).
func ShouldAugment(subs []model.Subscription, skill string, source matcher.Source, completionHooksOn bool) bool {
	return completionHooksOn && matcher.HasCompletionSubscriber(subs, skill, source)
}

// ChainExhausted reports whether a completion-phase invocation arriving at
// depth has exceeded the chain bound and must emit no further text.
func ChainExhausted(depth int) bool {
	return depth >= MaxDepth
}
