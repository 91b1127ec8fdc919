// Package config implements C2: loading and merging the global and project
// configuration files into one EffectiveView. Parsing (parse.go) and settings
// overlay (settings.go) are kept as pure functions free of I/O so tests can
// drive them with literal inputs; Load (loader.go) is the thin I/O shell
// around them.
package config

import (
	"sort"

	"github.com/hazyhaar/skillbus/internal/model"
)

// Merge combines a global and a project ConfigFile into one EffectiveView.
// Either argument may be nil, meaning that file was absent or failed to
// parse (the caller already warned in that case). Merge itself never fails:
// a missing file degrades to "no contribution from that scope", never to an
// error.
func Merge(global, project *model.ConfigFile, diag *model.Diagnostics) model.EffectiveView {
	if global == nil {
		global = &model.ConfigFile{}
	}
	if project == nil {
		project = &model.ConfigFile{}
	}

	settings := model.DefaultSettings()
	settings = overlaySettings(settings, global.Settings, "global", diag)
	settings = overlaySettings(settings, project.Settings, "project", diag)

	if !settings.Enabled {
		return model.EffectiveView{
			Settings:      settings,
			Inserts:       map[string]model.Insert{},
			Subscriptions: nil,
		}
	}

	inserts := mergeInserts(global.Inserts, project.Inserts, diag)

	var globalSubs []model.Subscription
	if !settings.DisableGlobal {
		globalSubs = tagScope(global.Subscriptions, model.ScopeGlobal)
	}
	projectSubs := tagScope(project.Subscriptions, model.ScopeProject)

	subs := mergeSubscriptions(globalSubs, projectSubs)

	return model.EffectiveView{
		Settings:      settings,
		Inserts:       inserts,
		Subscriptions: subs,
	}
}

func tagScope(subs []model.Subscription, scope model.Scope) []model.Subscription {
	out := make([]model.Subscription, len(subs))
	for i, s := range subs {
		s.Scope = scope
		out[i] = s
	}
	return out
}

// mergeInserts unions the two insert maps. A project insert with the same
// name as a global one fully replaces it; this is an advisory, not a
// warning, since naming an insert the same in both scopes is an ordinary way
// to override a shared default.
func mergeInserts(global, project map[string]model.Insert, diag *model.Diagnostics) map[string]model.Insert {
	out := make(map[string]model.Insert, len(global)+len(project))
	for name, ins := range global {
		ins.Name = name
		ins.Scope = model.ScopeGlobal
		out[name] = ins
	}
	for name, ins := range project {
		ins.Name = name
		ins.Scope = model.ScopeProject
		if _, collide := out[name]; collide {
			diag.Advise("insert %q defined in both global and project config; project wins", name)
		}
		out[name] = ins
	}
	return out
}

// mergeSubscriptions concatenates global then project subscriptions,
// applies the two override levels a project subscription can carry, then
// deduplicates by identity tuple keeping the last occurrence in list order.
//
// Override levels (§4.2):
//   - a project subscription with a complete identity tuple (insert, on,
//     when) and enabled=false removes exactly the matching global entry.
//   - a project subscription naming only an insert (no on/when) with
//     enabled=false removes every global subscription referencing that
//     insert, regardless of pattern or timing.
func mergeSubscriptions(global, project []model.Subscription) []model.Subscription {
	var blanketDisabled = map[string]bool{}
	var exactDisabled = map[model.Identity]bool{}

	for _, s := range project {
		if s.IsEnabled() {
			continue
		}
		if s.HasCompleteIdentity() {
			exactDisabled[s.ID()] = true
		} else if s.Insert != "" {
			blanketDisabled[s.Insert] = true
		}
	}

	combined := make([]model.Subscription, 0, len(global)+len(project))
	for _, s := range global {
		if blanketDisabled[s.Insert] || exactDisabled[s.ID()] {
			continue
		}
		combined = append(combined, s)
	}
	for _, s := range project {
		if !s.IsEnabled() {
			// A disabled project entry is purely an override directive
			// (exact or blanket); it never routes anything itself.
			continue
		}
		combined = append(combined, s)
	}

	// Position each surviving identity tuple at its *last* occurrence in
	// combined (§4.4 Ordering), not its first — a duplicate's later copy
	// wins both the value and the slot.
	lastIndex := map[model.Identity]int{}
	for i, s := range combined {
		lastIndex[s.ID()] = i
	}

	seen := map[model.Identity]bool{}
	positions := make([]int, 0, len(lastIndex))
	for _, s := range combined {
		id := s.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		positions = append(positions, lastIndex[id])
	}
	sort.Ints(positions)

	out := make([]model.Subscription, 0, len(positions))
	for _, idx := range positions {
		out = append(out, combined[idx])
	}
	return out
}
