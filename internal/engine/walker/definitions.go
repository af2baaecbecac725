package walker

import (
	"strings"

	"genstub/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Definition is a documented function or class as seen by documentation
// tooling.
type Definition struct {
	Name  string
	Class bool
	// Params lists formal parameter names without markers. For classes they
	// are the initializer's parameters.
	Params        []string
	Docstring     string
	InitDocstring string
	Line          int
}

// Definitions lists every function and class of source in encounter order,
// whether or not it carries a signature.
func Definitions(source []byte) ([]Definition, error) {
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

	var defs []Definition
	ctx := &ExtractionContext{Source: source, root: root}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"function_definition": func(ctx *ExtractionContext, node *sitter.Node) bool {
			defs = append(defs, Definition{
				Name:      definitionPath(ctx, node),
				Params:    parameterNames(ctx, node),
				Docstring: docstring(ctx, node),
				Line:      ctx.Line(node),
			})
			return false
		},
		"class_definition": func(ctx *ExtractionContext, node *sitter.Node) bool {
			def := Definition{
				Name:      definitionPath(ctx, node),
				Class:     true,
				Docstring: docstring(ctx, node),
				Line:      ctx.Line(node),
			}
			if init := findMethod(ctx, node, "__init__"); init != nil {
				def.Params = parameterNames(ctx, init)
				def.InitDocstring = docstring(ctx, init)
			}
			defs = append(defs, def)
			return false
		},
	})
	engine.Walk(ctx, root)
	return defs, nil
}

func definitionPath(ctx *ExtractionContext, node *sitter.Node) string {
	parts := []string{ctx.FieldText(node, "name")}
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "function_definition", "class_definition":
			parts = append([]string{ctx.FieldText(p, "name")}, parts...)
		}
	}
	return strings.Join(parts, ".")
}

func parameterNames(ctx *ExtractionContext, def *sitter.Node) []string {
	params := def.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var names []string
	for i := uint(0); i < params.ChildCount(); i++ {
		p, ok := parameter(ctx, params.Child(i))
		if !ok || p.Role.Marker() {
			continue
		}
		names = append(names, p.Name)
	}
	return names
}

func findMethod(ctx *ExtractionContext, class *sitter.Node, name string) *sitter.Node {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		stmt := body.NamedChild(i)
		if stmt.Kind() == "decorated_definition" {
			stmt = stmt.ChildByFieldName("definition")
		}
		if stmt != nil && stmt.Kind() == "function_definition" && ctx.FieldText(stmt, "name") == name {
			return stmt
		}
	}
	return nil
}
