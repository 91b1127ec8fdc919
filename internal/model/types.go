// Package model defines the data shapes shared by every dispatch component:
// inserts, conditions, subscriptions, settings, and the merged effective view.
package model

import "fmt"

// Scope identifies which configuration file an Insert or Subscription came from.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeProject Scope = "project"
)

// Timing is the closed set of moments a subscription can fire at.
type Timing string

const (
	TimingPre      Timing = "pre"
	TimingPost     Timing = "post"
	TimingComplete Timing = "complete"
)

// ValidTiming reports whether t is one of the three recognized timing values.
func ValidTiming(t string) bool {
	switch Timing(t) {
	case TimingPre, TimingPost, TimingComplete:
		return true
	}
	return false
}

// Insert is a named, reusable unit of content owned by exactly one scope.
type Insert struct {
	Name       string      `json:"-"`
	Text       string      `json:"text"`
	Handler    string      `json:"handler,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
	Scope      Scope       `json:"-"`
}

// Subscription is a routing rule mapping a skill-name glob and timing to an insert.
type Subscription struct {
	Insert             string      `json:"insert"`
	On                 string      `json:"on"`
	When               Timing      `json:"when"`
	Enabled            *bool       `json:"enabled,omitempty"`
	InheritConditions  *bool       `json:"inheritConditions,omitempty"`
	Conditions         []Condition `json:"conditions,omitempty"`
	Scope              Scope       `json:"-"`
}

// IsEnabled returns the subscription's enabled flag, defaulting to true.
func (s Subscription) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Inherits returns whether the subscription inherits its insert's own conditions,
// defaulting to true.
func (s Subscription) Inherits() bool {
	return s.InheritConditions == nil || *s.InheritConditions
}

// Identity is the (insert name, pattern, timing) tuple that uniquely identifies
// a subscription within the effective view.
type Identity struct {
	Insert string
	On     string
	When   Timing
}

// ID returns this subscription's identity tuple.
func (s Subscription) ID() Identity {
	return Identity{Insert: s.Insert, On: s.On, When: s.When}
}

// HasCompleteIdentity reports whether the subscription carries enough fields
// (on + when, in addition to insert) to form a full identity tuple, as opposed
// to only naming an insert for a blanket disable.
func (s Subscription) HasCompleteIdentity() bool {
	return s.On != "" && s.When != ""
}

// Settings is the flat record of operational knobs, already merged (defaults
// overlaid by global then project) and type-checked.
type Settings struct {
	Enabled               bool
	MaxMatchesPerSkill    int
	ShowConsoleEcho       bool
	DisableGlobal         bool
	MonitorSlashCommands  bool
	CompletionHooks       bool
	ShowConditionSkips    bool
	Telemetry             bool
	ObserveUnmatched      bool
	TelemetryPath         string
	MaxLogSizeKB          int
}

// DefaultSettings returns the built-in defaults §6 specifies.
func DefaultSettings() Settings {
	return Settings{
		Enabled:              true,
		MaxMatchesPerSkill:   3,
		ShowConsoleEcho:      true,
		DisableGlobal:        false,
		MonitorSlashCommands: false,
		CompletionHooks:      false,
		ShowConditionSkips:   false,
		Telemetry:            false,
		ObserveUnmatched:     false,
		TelemetryPath:        "",
		MaxLogSizeKB:         512,
	}
}

// ConfigFile is the on-disk shape of a global or project configuration file.
// Settings is kept as raw JSON per-field so the merger can independently
// type-check and warn on each field rather than failing the whole file.
type ConfigFile struct {
	Settings      map[string]RawValue `json:"settings"`
	Inserts       map[string]Insert   `json:"inserts"`
	Subscriptions []Subscription      `json:"subscriptions"`
}

// RawValue defers JSON decoding of a single settings field so the merger can
// report per-field type mismatches instead of failing the whole settings block.
type RawValue struct {
	Raw []byte
}

func (r *RawValue) UnmarshalJSON(b []byte) error {
	r.Raw = append([]byte(nil), b...)
	return nil
}

// MarshalJSON re-emits the raw bytes verbatim so a ConfigFile round-trips
// through the CLI's read-modify-write cycle without reinterpreting values
// it never needed to type-check.
func (r RawValue) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

// EffectiveView is the merged, deduplicated, override-processed projection of
// global and project configuration used by a single dispatch.
type EffectiveView struct {
	Settings      Settings
	Inserts       map[string]Insert
	Subscriptions []Subscription
}

// Diagnostics accumulates warnings and advisories over the course of one
// dispatch. Dispatch never raises; this is where "something was off" goes
// instead, mirroring the teacher's DebugEvent log (internal/core/modules.go)
// but rendered into the response instead of a persisted trace.
type Diagnostics struct {
	Warnings   []string
	Advisories []string
}

func (d *Diagnostics) Warnf(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

func (d *Diagnostics) Advise(format string, args ...any) {
	d.Advisories = append(d.Advisories, fmt.Sprintf(format, args...))
}
