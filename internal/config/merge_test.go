package config

import (
	"testing"

	"github.com/hazyhaar/skillbus/internal/model"
)

func rv(json string) model.RawValue {
	return model.RawValue{Raw: []byte(json)}
}

func TestMergeSettingsDefaultsAndOverlay(t *testing.T) {
	global := &model.ConfigFile{
		Settings: map[string]model.RawValue{
			"maxMatchesPerSkill": rv("5"),
			"telemetry":          rv("true"),
		},
	}
	project := &model.ConfigFile{
		Settings: map[string]model.RawValue{
			"maxMatchesPerSkill": rv(`"not a number"`),
			"showConsoleEcho":    rv("false"),
		},
	}
	diag := &model.Diagnostics{}
	view := Merge(global, project, diag)

	if view.Settings.MaxMatchesPerSkill != 5 {
		t.Errorf("maxMatchesPerSkill = %d, want 5 (malformed project override should fall back)", view.Settings.MaxMatchesPerSkill)
	}
	if !view.Settings.Telemetry {
		t.Error("telemetry should be true from global overlay")
	}
	if view.Settings.ShowConsoleEcho {
		t.Error("showConsoleEcho should be false from project overlay")
	}
	if len(diag.Warnings) != 1 {
		t.Errorf("expected exactly one warning for the malformed project field, got %v", diag.Warnings)
	}
}

func TestMergeMasterDisableShortCircuits(t *testing.T) {
	global := &model.ConfigFile{
		Settings: map[string]model.RawValue{"enabled": rv("false")},
		Inserts: map[string]model.Insert{
			"foo": {Text: "hello"},
		},
		Subscriptions: []model.Subscription{
			{Insert: "foo", On: "bash", When: model.TimingPre},
		},
	}
	diag := &model.Diagnostics{}
	view := Merge(global, nil, diag)

	if len(view.Inserts) != 0 || len(view.Subscriptions) != 0 {
		t.Errorf("expected empty effective view when enabled=false, got %+v", view)
	}
}

func TestMergeInsertsProjectWins(t *testing.T) {
	global := &model.ConfigFile{
		Inserts: map[string]model.Insert{"shared": {Text: "global text"}},
	}
	project := &model.ConfigFile{
		Inserts: map[string]model.Insert{"shared": {Text: "project text"}},
	}
	diag := &model.Diagnostics{}
	view := Merge(global, project, diag)

	if view.Inserts["shared"].Text != "project text" {
		t.Errorf("project insert should win on name collision, got %q", view.Inserts["shared"].Text)
	}
	if len(diag.Advisories) != 1 {
		t.Errorf("expected one advisory for the insert collision, got %v", diag.Advisories)
	}
}

func TestMergeSubscriptionsExactOverrideDisablesOne(t *testing.T) {
	global := &model.ConfigFile{
		Subscriptions: []model.Subscription{
			{Insert: "foo", On: "bash", When: model.TimingPre},
			{Insert: "foo", On: "bash", When: model.TimingPost},
		},
	}
	disabled := false
	project := &model.ConfigFile{
		Subscriptions: []model.Subscription{
			{Insert: "foo", On: "bash", When: model.TimingPre, Enabled: &disabled},
		},
	}
	diag := &model.Diagnostics{}
	view := Merge(global, project, diag)

	if len(view.Subscriptions) != 1 {
		t.Fatalf("expected exactly 1 surviving subscription, got %d: %+v", len(view.Subscriptions), view.Subscriptions)
	}
	if view.Subscriptions[0].When != model.TimingPost {
		t.Errorf("expected the post subscription to survive, got %+v", view.Subscriptions[0])
	}
}

func TestMergeSubscriptionsBlanketOverrideDisablesAll(t *testing.T) {
	global := &model.ConfigFile{
		Subscriptions: []model.Subscription{
			{Insert: "foo", On: "bash", When: model.TimingPre},
			{Insert: "foo", On: "edit", When: model.TimingPost},
			{Insert: "bar", On: "bash", When: model.TimingPre},
		},
	}
	disabled := false
	project := &model.ConfigFile{
		Subscriptions: []model.Subscription{
			{Insert: "foo", Enabled: &disabled},
		},
	}
	diag := &model.Diagnostics{}
	view := Merge(global, project, diag)

	if len(view.Subscriptions) != 1 || view.Subscriptions[0].Insert != "bar" {
		t.Errorf("blanket disable should remove every global subscription for %q, got %+v", "foo", view.Subscriptions)
	}
}

func TestMergeSubscriptionsDisableGlobalDropsAllGlobal(t *testing.T) {
	global := &model.ConfigFile{
		Subscriptions: []model.Subscription{
			{Insert: "foo", On: "bash", When: model.TimingPre},
		},
	}
	project := &model.ConfigFile{
		Settings: map[string]model.RawValue{"disableGlobal": rv("true")},
		Subscriptions: []model.Subscription{
			{Insert: "bar", On: "edit", When: model.TimingPre},
		},
	}
	diag := &model.Diagnostics{}
	view := Merge(global, project, diag)

	if len(view.Subscriptions) != 1 || view.Subscriptions[0].Insert != "bar" {
		t.Errorf("disableGlobal should drop every global subscription, got %+v", view.Subscriptions)
	}
}

func TestMergeSubscriptionsDedupKeepsLastOccurrence(t *testing.T) {
	global := &model.ConfigFile{
		Subscriptions: []model.Subscription{
			{Insert: "foo", On: "bash", When: model.TimingPre, InheritConditions: boolPtr(false)},
		},
	}
	project := &model.ConfigFile{
		Subscriptions: []model.Subscription{
			{Insert: "foo", On: "bash", When: model.TimingPre, InheritConditions: boolPtr(true)},
		},
	}
	diag := &model.Diagnostics{}
	view := Merge(global, project, diag)

	if len(view.Subscriptions) != 1 {
		t.Fatalf("expected dedup to one subscription, got %d", len(view.Subscriptions))
	}
	if !view.Subscriptions[0].Inherits() {
		t.Error("expected the later (project) occurrence to win the dedup")
	}
}

func TestMergeSubscriptionsDedupPositionsAtLastOccurrence(t *testing.T) {
	global := &model.ConfigFile{
		Subscriptions: []model.Subscription{
			{Insert: "a", On: "bash", When: model.TimingPre},
			{Insert: "b", On: "bash", When: model.TimingPre},
			{Insert: "c", On: "bash", When: model.TimingPre},
		},
	}
	project := &model.ConfigFile{
		Subscriptions: []model.Subscription{
			{Insert: "a", On: "bash", When: model.TimingPre},
		},
	}
	diag := &model.Diagnostics{}
	view := Merge(global, project, diag)

	if len(view.Subscriptions) != 3 {
		t.Fatalf("expected 3 subscriptions after dedup, got %d", len(view.Subscriptions))
	}
	got := []string{view.Subscriptions[0].Insert, view.Subscriptions[1].Insert, view.Subscriptions[2].Insert}
	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got order %v, want %v", got, want)
		}
	}
}

func boolPtr(b bool) *bool { return &b }

func TestParseFileAbsentBytes(t *testing.T) {
	cf, ok := parseFile(nil)
	if !ok || cf == nil {
		t.Fatal("parseFile(nil) should succeed with an empty ConfigFile")
	}
	if len(cf.Inserts) != 0 || len(cf.Subscriptions) != 0 {
		t.Errorf("expected empty ConfigFile, got %+v", cf)
	}
}

func TestParseFileMalformedJSON(t *testing.T) {
	if _, ok := parseFile([]byte("{not json")); ok {
		t.Error("expected parseFile to reject malformed JSON")
	}
}

func TestParseFileNonObjectTop(t *testing.T) {
	if _, ok := parseFile([]byte(`["a", "b"]`)); ok {
		t.Error("expected parseFile to reject a non-object top-level value")
	}
}

func TestParseFileStampsInsertNames(t *testing.T) {
	cf, ok := parseFile([]byte(`{"inserts": {"foo": {"text": "hi"}}}`))
	if !ok {
		t.Fatal("expected parseFile to succeed")
	}
	if cf.Inserts["foo"].Name != "foo" {
		t.Errorf("expected insert name to be stamped from its map key, got %q", cf.Inserts["foo"].Name)
	}
}
