package model

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalPathExists(t *testing.T) {
	var c Condition
	if err := json.Unmarshal([]byte(`{"type":"path-exists","path":"go.mod"}`), &c); err != nil {
		t.Fatal(err)
	}
	if c.Malformed || c.Kind != CondPathExists || c.Path != "go.mod" {
		t.Errorf("got %+v", c)
	}
}

func TestUnmarshalMissingRequiredFieldIsMalformed(t *testing.T) {
	var c Condition
	if err := json.Unmarshal([]byte(`{"type":"path-exists"}`), &c); err != nil {
		t.Fatal(err)
	}
	if !c.Malformed {
		t.Error("expected a missing \"path\" to mark the condition malformed")
	}
}

func TestUnmarshalUnknownTypeIsMalformed(t *testing.T) {
	var c Condition
	if err := json.Unmarshal([]byte(`{"type":"something-new"}`), &c); err != nil {
		t.Fatal(err)
	}
	if !c.Malformed {
		t.Error("expected an unrecognized type to mark the condition malformed")
	}
}

func TestUnmarshalNegation(t *testing.T) {
	var c Condition
	raw := `{"type":"negation-of-any-condition","of":{"type":"env-var-set-and-nonempty","name":"CI"}}`
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatal(err)
	}
	if c.Malformed || c.Kind != CondNot || c.Negate == nil || c.Negate.Kind != CondEnvSet {
		t.Errorf("got %+v", c)
	}
}

func TestConditionRoundTrip(t *testing.T) {
	raw := `{"type":"file-contains-substring-or-regex","file":"go.mod","match":"module","regex":false}`
	var c Condition
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	var roundTripped Condition
	if err := json.Unmarshal(out, &roundTripped); err != nil {
		t.Fatal(err)
	}
	if roundTripped.Kind != c.Kind || roundTripped.FilePath != c.FilePath || roundTripped.Pattern != c.Pattern {
		t.Errorf("round trip mismatch: got %+v, want %+v", roundTripped, c)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if !s.Enabled || s.MaxMatchesPerSkill != 3 || s.MaxLogSizeKB != 512 {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestSubscriptionIdentityAndOverride(t *testing.T) {
	s := Subscription{Insert: "foo", On: "bash", When: TimingPre}
	if !s.HasCompleteIdentity() {
		t.Error("expected complete identity")
	}
	blanket := Subscription{Insert: "foo"}
	if blanket.HasCompleteIdentity() {
		t.Error("a bare insert name should not be a complete identity")
	}
	if !s.IsEnabled() || !s.Inherits() {
		t.Error("nil Enabled/InheritConditions should default to true")
	}
}
