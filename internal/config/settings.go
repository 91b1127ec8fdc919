package config

import (
	"encoding/json"

	"github.com/hazyhaar/skillbus/internal/model"
)

// overlaySettings applies one scope's settings block on top of base,
// field-by-field, per §4.2: each field is independently typed, and a
// wrong-typed value falls back to the *current* value (already containing
// defaults or an earlier scope's overlay) with a warning naming that field.
func overlaySettings(base model.Settings, raw map[string]model.RawValue, scope string, diag *model.Diagnostics) model.Settings {
	out := base

	boolField := func(key string, dst *bool) {
		rv, ok := raw[key]
		if !ok {
			return
		}
		var v bool
		if err := json.Unmarshal(rv.Raw, &v); err != nil {
			diag.Warnf("%s settings: %q must be a boolean, using %v", scope, key, *dst)
			return
		}
		*dst = v
	}

	intField := func(key string, dst *int, min int) {
		rv, ok := raw[key]
		if !ok {
			return
		}
		var v int
		if err := json.Unmarshal(rv.Raw, &v); err != nil || v < min {
			diag.Warnf("%s settings: %q must be an integer >= %d, using %d", scope, key, min, *dst)
			return
		}
		*dst = v
	}

	stringField := func(key string, dst *string) {
		rv, ok := raw[key]
		if !ok {
			return
		}
		var v string
		if err := json.Unmarshal(rv.Raw, &v); err != nil {
			diag.Warnf("%s settings: %q must be a string, using %q", scope, key, *dst)
			return
		}
		*dst = v
	}

	boolField("enabled", &out.Enabled)
	intField("maxMatchesPerSkill", &out.MaxMatchesPerSkill, 1)
	boolField("showConsoleEcho", &out.ShowConsoleEcho)
	boolField("disableGlobal", &out.DisableGlobal)
	boolField("monitorSlashCommands", &out.MonitorSlashCommands)
	boolField("completionHooks", &out.CompletionHooks)
	boolField("showConditionSkips", &out.ShowConditionSkips)
	boolField("telemetry", &out.Telemetry)
	boolField("observeUnmatched", &out.ObserveUnmatched)
	stringField("telemetryPath", &out.TelemetryPath)
	intField("maxLogSizeKB", &out.MaxLogSizeKB, 0)

	return out
}
