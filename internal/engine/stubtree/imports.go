package stubtree

import "strings"

// RenameSep joins the local alias and the original name of a renamed import.
const RenameSep = "::"

// Import is one name bound by an import statement. Key is the bound name,
// or `alias::original` when the import renames it. Origin is the module the
// name comes from, written as in the source.
type Import struct {
	Key    string
	Origin string
}

// Alias returns the name the import binds in the importing unit.
func (i Import) Alias() string {
	alias, _, _ := strings.Cut(i.Key, RenameSep)
	return alias
}

// Name returns the imported name as declared by its origin.
func (i Import) Name() string {
	if _, name, ok := strings.Cut(i.Key, RenameSep); ok {
		return name
	}
	return i.Key
}

func (i Import) Renamed() bool {
	return strings.Contains(i.Key, RenameSep)
}

// RenamedKey builds the key of an import binding name as alias.
func RenamedKey(alias, name string) string {
	return alias + RenameSep + name
}
