package config

import (
	"os"

	"github.com/hazyhaar/skillbus/internal/fastfilter"
	"github.com/hazyhaar/skillbus/internal/model"
)

// Load reads both configuration files from disk, parses them, and returns
// the merged EffectiveView. Read or parse failure for either file degrades
// that file to "absent" plus a warning; Load itself never returns an error,
// matching dispatch's never-raise discipline (§4.2).
func Load(paths fastfilter.Paths, diag *model.Diagnostics) model.EffectiveView {
	global := loadOne(paths.Global, "global", diag)
	project := loadOne(paths.Project, "project", diag)
	return Merge(global, project, diag)
}

func loadOne(path, scope string, diag *model.Diagnostics) *model.ConfigFile {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			diag.Warnf("%s config %q: %v, treating as absent", scope, path, err)
		}
		return &model.ConfigFile{}
	}

	cf, ok := parseFile(data)
	if !ok {
		diag.Warnf("%s config %q: malformed JSON, treating as absent", scope, path)
		return &model.ConfigFile{}
	}
	return cf
}
