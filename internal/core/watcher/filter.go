package watcher

import (
	"path/filepath"
	"strings"

	"genstub/internal/shared/util"

	"github.com/gobwas/glob"
)

// SourceExt is the extension of the source units stubs are generated for.
const SourceExt = ".py"

// Filter decides which directories and files take part in a run. Patterns
// are matched against both the base name and the slash-separated path.
type Filter struct {
	dirs  []glob.Glob
	files []glob.Glob
}

func NewFilter(excludeDirs, excludeFiles []string) (*Filter, error) {
	dirs, err := compileAll(excludeDirs)
	if err != nil {
		return nil, err
	}
	files, err := compileAll(excludeFiles)
	if err != nil {
		return nil, err
	}
	return &Filter{dirs: dirs, files: files}, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func (f *Filter) SkipDir(path string) bool {
	return matchAny(f.dirs, path)
}

// SkipFile reports whether path is not a source unit or is excluded.
func (f *Filter) SkipFile(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), SourceExt) {
		return true
	}
	return matchAny(f.files, path)
}

func matchAny(globs []glob.Glob, path string) bool {
	if len(globs) == 0 {
		return false
	}
	normalized := util.NormalizePatternPath(path)
	base := filepath.Base(path)
	for _, g := range globs {
		if g.Match(base) || g.Match(normalized) {
			return true
		}
	}
	return false
}
