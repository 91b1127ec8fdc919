// Package resolve implements C5, the dynamic resolver: turning a firing
// subscription's target insert into injectable text, falling back to
// static text whenever a dynamic handler is absent, unknown, or fails.
// The handler registry is closed, mirroring the teacher's builtinHandlers
// map in internal/core/modules.go, adapted from an arbitrary-name handler
// bus to the spec's fixed, documented set.
package resolve

import (
	"github.com/hazyhaar/skillbus/internal/model"
)

// Handler produces dynamic text for an insert. workDir is the invocation's
// working directory; it never returns an error — failure is signaled by an
// empty string, which the caller treats as "fall back to static text".
type Handler func(workDir string) string

// Registry is the closed set of dynamic handler names dispatch recognizes.
// New handlers are added here, never accepted by name from configuration.
var Registry = map[string]Handler{
	"session-stats": SessionStats,
}

// Resolve produces the text an insert contributes. A handler name absent
// from Registry falls back immediately with a warning (schema drift, §7).
// A recognized handler that panics is never reached here — handlers are
// plain functions with no panics by construction; the 5s dispatch envelope
// bounds their wall-clock cost the same way it bounds everything else.
func Resolve(ins model.Insert, workDir string, diag *model.Diagnostics) string {
	if ins.Handler == "" {
		return ins.Text
	}
	h, ok := Registry[ins.Handler]
	if !ok {
		diag.Warnf("insert %q names unknown handler %q, using static text", ins.Name, ins.Handler)
		return ins.Text
	}
	if out := h(workDir); out != "" {
		return out
	}
	return ins.Text
}
