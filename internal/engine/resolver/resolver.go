// Package resolver decides where every type name a stub mentions comes
// from, or fails when a name has no provenance.
package resolver

import (
	"log/slog"
	"slices"
	"sort"
	"strings"

	"genstub/internal/core/errors"
	"genstub/internal/engine/stubtree"
)

// TypingModule is the module standard vocabulary names are imported from.
const TypingModule = "typing"

type Input struct {
	Required map[string]bool
	Defined  map[string]bool
	// ImportedNames and ImportedNamespaces are in source declaration order.
	ImportedNames      []stubtree.Import
	ImportedNamespaces []stubtree.Import
	ModuleVariables    map[string]bool
}

// Report is the import plan of one unit.
type Report struct {
	// Imported lists the from-imports to re-emit, in source order.
	Imported []stubtree.Import `yaml:"imported"`
	// NeededNamespaces are namespaces to import fresh, sorted.
	NeededNamespaces []string `yaml:"needed_namespaces"`
	// ReusedNamespaces are namespace imports of the source to re-emit.
	ReusedNamespaces []stubtree.Import `yaml:"reused_namespaces"`
	// StandardVocabulary names come from the typing module, sorted.
	StandardVocabulary []string `yaml:"standard_vocabulary"`
}

// Resolve attributes every required name. Each step claims names for good;
// later steps never see names an earlier step settled.
func Resolve(in Input) (Report, error) {
	var rep Report

	plain := make(map[string]bool)
	namespaces := make(map[string]bool)
	for name := range in.Required {
		switch {
		case IsBuiltin(name):
		case in.Defined[name]:
		case strings.Contains(name, "."):
			ns := name[:strings.LastIndex(name, ".")]
			if in.ModuleVariables[ns] {
				continue
			}
			namespaces[ns] = true
		default:
			plain[name] = true
		}
	}
	slog.Debug("needed namespaces", "namespaces", sortedKeys(namespaces))

	claimed := make(map[string]bool)
	for _, imp := range in.ImportedNames {
		alias := imp.Alias()
		if plain[alias] || namespaces[alias] {
			rep.Imported = append(rep.Imported, imp)
			claimed[alias] = true
		}
	}
	for alias := range claimed {
		delete(plain, alias)
		delete(namespaces, alias)
	}
	slog.Debug("used imported types", "types", sortedKeys(claimed))

	for _, imp := range in.ImportedNamespaces {
		alias := imp.Alias()
		if namespaces[alias] {
			rep.ReusedNamespaces = append(rep.ReusedNamespaces, imp)
			delete(namespaces, alias)
		}
	}
	rep.NeededNamespaces = sortedKeys(namespaces)

	for name := range plain {
		if InTyping(name) {
			rep.StandardVocabulary = append(rep.StandardVocabulary, name)
			delete(plain, name)
		}
	}
	sort.Strings(rep.StandardVocabulary)
	slog.Debug("types from typing module", "types", rep.StandardVocabulary)

	if len(plain) > 0 {
		return Report{}, errors.UnresolvedTypes(sortedKeys(plain))
	}
	return rep, nil
}

// Namespaces returns every namespace import line target, fresh and reused,
// in the order they are rendered.
func (r Report) Namespaces() []stubtree.Import {
	all := make([]stubtree.Import, 0, len(r.NeededNamespaces)+len(r.ReusedNamespaces))
	for _, ns := range r.NeededNamespaces {
		all = append(all, stubtree.Import{Key: ns, Origin: ns})
	}
	all = append(all, r.ReusedNamespaces...)
	slices.SortStableFunc(all, func(a, b stubtree.Import) int {
		return strings.Compare(a.Alias(), b.Alias())
	})
	return all
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
