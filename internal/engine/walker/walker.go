// Package walker turns Python source into a declaration tree plus the
// import and type tables the resolver works from.
package walker

import (
	"strings"

	"genstub/internal/core/errors"
	"genstub/internal/engine/signature"
	"genstub/internal/engine/stubtree"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// AnyType is the type given to every unannotated slot in permissive mode.
const AnyType = "Any"

type Options struct {
	// Permissive emits declarations without a signature, typed Any.
	Permissive bool
}

// Result is everything collected from one source unit.
type Result struct {
	Tree *stubtree.Tree

	// ImportedNamespaces and ImportedNames keep declaration order.
	ImportedNamespaces []stubtree.Import
	ImportedNames      []stubtree.Import

	DefinedTypes  map[string]bool
	RequiredTypes map[string]bool
	Aliases       []signature.Alias
}

func newResult() *Result {
	return &Result{
		Tree:          stubtree.New(),
		DefinedTypes:  make(map[string]bool),
		RequiredTypes: make(map[string]bool),
	}
}

func (r *Result) require(names map[string]bool) {
	for n := range names {
		r.RequiredTypes[n] = true
	}
}

// ModuleVariables returns the names of the module-scope variables.
func (r *Result) ModuleVariables() map[string]bool {
	return r.Tree.VariableNames(stubtree.Root)
}

// Walk parses source and collects its declarations.
func Walk(source []byte, opts Options) (*Result, error) {
	res := newResult()

	aliases, err := signature.ParseAliases(strings.Split(string(source), "\n"))
	if err != nil {
		return nil, err
	}
	for _, a := range aliases {
		sig, err := signature.Parse(a.Signature)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxSymbol, a.Name)
		}
		res.require(sig.Required)
		res.DefinedTypes[a.Name] = true
	}
	res.Aliases = aliases

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(pythonLanguage()); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load python grammar")
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, errors.MalformedSource(firstErrorLine(root), "source contains syntax errors")
	}

	ctx := &ExtractionContext{
		Source:     source,
		Result:     res,
		Opts:       opts,
		Scope:      stubtree.Root,
		lineStarts: lineStarts(source),
		root:       root,
	}
	newPythonExtractor().Extract(ctx, root)
	if ctx.Err != nil {
		return nil, ctx.Err
	}
	return res, nil
}

func pythonLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_python.Language())
}

func firstErrorLine(node *sitter.Node) int {
	if node.IsError() || node.IsMissing() {
		return int(node.StartPosition().Row) + 1
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsMissing() {
			return firstErrorLine(child)
		}
	}
	return int(node.StartPosition().Row) + 1
}
