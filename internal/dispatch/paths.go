package dispatch

import (
	"path/filepath"

	"github.com/hazyhaar/skillbus/internal/fastfilter"
)

func workDirFromPaths(paths fastfilter.Paths) string {
	return filepath.Dir(paths.Project)
}

func isAbs(p string) bool {
	return filepath.IsAbs(p)
}

func joinPath(dir, rest string) string {
	return filepath.Join(dir, rest)
}
