package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"genstub/internal/core/errors"
)

const StubExt = ".pyi"

// Unit pairs a source file with the stub written for it.
type Unit struct {
	Source      string
	Destination string
}

// ScanSources expands files and directories into source units. Explicit
// files are always taken; directories are walked for sources that pass
// the exclude filter.
func (a *App) ScanSources(paths []string) ([]Unit, error) {
	a.cfgMu.RLock()
	filter := a.filter
	outDir := a.paths.OutputDir
	a.cfgMu.RUnlock()

	seen := make(map[string]bool)
	var units []Unit
	add := func(source string) {
		if seen[source] {
			return
		}
		seen[source] = true
		units = append(units, Unit{Source: source, Destination: Destination(source, outDir)})
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "cannot read input"), errors.CtxPath, root)
		}
		if !info.IsDir() {
			add(filepath.Clean(root))
			continue
		}

		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			if d.IsDir() {
				if path != root && filter.SkipDir(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if !filter.SkipFile(rel) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
		sort.Strings(found)
		for _, source := range found {
			add(source)
		}
	}
	return units, nil
}

// Destination returns the stub path for source. Without an output
// directory the stub sits next to its source. With one, the source path is
// re-rooted below it; sources reached through ".." are made absolute first.
func Destination(source, outDir string) string {
	dest := filepath.Clean(source)
	if outDir != "" {
		if strings.HasPrefix(filepath.ToSlash(dest), "..") {
			if abs, err := filepath.Abs(dest); err == nil {
				dest = abs
			}
		}
		if filepath.IsAbs(dest) {
			dest = strings.TrimPrefix(dest, filepath.VolumeName(dest))
			dest = strings.TrimLeft(dest, string(filepath.Separator))
		}
		dest = filepath.Join(outDir, dest)
	}
	return strings.TrimSuffix(dest, filepath.Ext(dest)) + StubExt
}
