package stub

import (
	"genstub/internal/engine/resolver"
	"genstub/internal/engine/walker"
)

// Analyze walks source and resolves the types it requires.
func Analyze(source []byte, opts Options) (*walker.Result, resolver.Report, error) {
	res, err := walker.Walk(source, walker.Options{Permissive: opts.Permissive})
	if err != nil {
		return nil, resolver.Report{}, err
	}
	rep, err := resolver.Resolve(resolver.Input{
		Required:           res.RequiredTypes,
		Defined:            res.DefinedTypes,
		ImportedNames:      res.ImportedNames,
		ImportedNamespaces: res.ImportedNamespaces,
		ModuleVariables:    res.ModuleVariables(),
	})
	if err != nil {
		return nil, resolver.Report{}, err
	}
	return res, rep, nil
}

// Generate returns the stub for one source unit. Nothing is produced when
// any step fails; an empty stub means there is nothing to emit.
func Generate(source []byte, opts Options) (string, error) {
	res, rep, err := Analyze(source, opts)
	if err != nil {
		return "", err
	}
	return Render(res, rep, opts), nil
}
