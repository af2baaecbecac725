package walker

import (
	"log/slog"
	"slices"

	"genstub/internal/core/errors"
	"genstub/internal/engine/signature"
	"genstub/internal/engine/stubtree"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type pythonExtractor struct {
	engine *ExtractorEngine
}

func newPythonExtractor() *pythonExtractor {
	e := &pythonExtractor{}
	e.engine = NewExtractorEngine(map[string]NodeHandler{
		"import_statement":      e.extractImport,
		"import_from_statement": e.extractFromImport,
		"assignment":            e.extractAssignment,
		"function_definition":   e.extractFunction,
		"class_definition":      e.extractClass,
	})
	return e
}

func (e *pythonExtractor) Extract(ctx *ExtractionContext, root *sitter.Node) {
	e.engine.Walk(ctx, root)
}

func (e *pythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "dotted_name":
			module := ctx.Text(child)
			ctx.Result.ImportedNamespaces = append(ctx.Result.ImportedNamespaces, stubtree.Import{
				Key:    module,
				Origin: module,
			})
		case "aliased_import":
			module := ctx.FieldText(child, "name")
			ctx.Result.ImportedNamespaces = append(ctx.Result.ImportedNamespaces, stubtree.Import{
				Key:    stubtree.RenamedKey(ctx.FieldText(child, "alias"), module),
				Origin: module,
			})
		}
	}
	return true
}

func (e *pythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) bool {
	module := ctx.FieldText(node, "module_name")
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.FieldNameForChild(uint32(i)) != "name" {
			continue
		}
		child := node.Child(i)
		key := ctx.Text(child)
		if child.Kind() == "aliased_import" {
			key = stubtree.RenamedKey(ctx.FieldText(child, "alias"), ctx.FieldText(child, "name"))
		}
		ctx.Result.ImportedNames = append(ctx.Result.ImportedNames, stubtree.Import{Key: key, Origin: module})
	}
	return true
}

func (e *pythonExtractor) extractAssignment(ctx *ExtractionContext, node *sitter.Node) bool {
	// Chained targets are collected from the outermost assignment; annotated
	// assignments already carry their type.
	if parent := node.Parent(); parent == nil || parent.Kind() != "expression_statement" {
		return true
	}
	if node.ChildByFieldName("type") != nil {
		return true
	}

	typ, found, err := e.commentType(ctx, node)
	if err != nil {
		ctx.Err = errors.AddContext(err, errors.CtxLine, ctx.Line(node))
		return true
	}
	if !found {
		if !ctx.Opts.Permissive {
			return true
		}
		typ = AnyType
		ctx.Result.RequiredTypes[AnyType] = true
	}

	tree := ctx.Result.Tree
	for a := node; a != nil && a.Kind() == "assignment"; a = a.ChildByFieldName("right") {
		target := a.ChildByFieldName("left")
		switch target.Kind() {
		case "identifier":
			tree.AddVariable(ctx.Scope, ctx.Text(target), typ)
		case "attribute":
			if ctx.FieldText(target, "object") != "self" {
				continue
			}
			if owner, ok := tree.Parent(ctx.Scope); ok {
				tree.AddVariable(owner, ctx.FieldText(target, "attribute"), typ)
			}
		}
	}
	return true
}

// commentType reads the type from a signature comment on the first line of
// node. Markers inside string literals do not count.
func (e *pythonExtractor) commentType(ctx *ExtractionContext, node *sitter.Node) (string, bool, error) {
	line, start := ctx.SourceLine(node.StartPosition().Row)
	for from := 0; from < len(line); {
		payload, offset, ok := signature.CommentPayload(line[from:])
		if !ok {
			break
		}
		offset += from
		if !ctx.IsComment(start + uint(offset)) {
			from = offset + len(signature.CommentMarker)
			continue
		}
		sig, err := signature.Parse(payload)
		if err != nil {
			return "", false, err
		}
		ctx.Result.require(sig.Required)
		return sig.Return, true, nil
	}
	return "", false, nil
}

func (e *pythonExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if name == "" {
		return true
	}
	tree := ctx.Result.Tree
	qualified := qualify(tree, ctx.Scope, name)

	sigText, found, err := signature.Extract(docstring(ctx, node))
	if err != nil {
		ctx.Err = errors.AddContext(err, errors.CtxSymbol, qualified)
		return true
	}
	if !found && name == "__init__" && tree.IsTypeDef(ctx.Scope) {
		if classSig := tree.Node(ctx.Scope).Signature; classSig != "" {
			sigText, found = classSig, true
		}
	}
	if !found && !ctx.Opts.Permissive {
		slog.Debug("skipping callable without signature", "name", qualified)
		return true
	}

	decorators := pythonDecorators(ctx, node)
	params := e.parameters(ctx, node.ChildByFieldName("parameters"), decorators)
	typed := 0
	for _, p := range params {
		if p.Role.Typed() {
			typed++
		}
	}

	rtype := AnyType
	if found {
		slog.Debug("parsing signature", "name", qualified, "signature", sigText)
		sig, err := signature.Parse(sigText)
		if err != nil {
			ctx.Err = errors.AddContext(err, errors.CtxSymbol, qualified)
			return true
		}
		if !sig.Callable {
			ctx.Err = errors.AddContext(errors.MalformedSignature(sigText, "callable signature needs a parameter list"), errors.CtxSymbol, qualified)
			return true
		}
		if len(sig.Params) != typed {
			ctx.Err = errors.ArityMismatch(qualified, typed, len(sig.Params))
			return true
		}
		next := 0
		for i := range params {
			if params[i].Role.Typed() {
				params[i].Type = sig.Params[next]
				next++
			}
		}
		rtype = sig.Return
		ctx.Result.require(sig.Required)
	} else {
		for i := range params {
			if params[i].Role.Typed() {
				params[i].Type = AnyType
			}
		}
		ctx.Result.RequiredTypes[AnyType] = true
	}

	id := tree.AddCallable(ctx.Scope, name, params, rtype, decorators, isAsync(node))
	e.engine.WalkScoped(ctx, node.ChildByFieldName("body"), id)
	return true
}

// parameters assigns a role to every formal parameter, keeping source order.
func (e *pythonExtractor) parameters(ctx *ExtractionContext, node *sitter.Node, decorators []string) []stubtree.Param {
	if node == nil {
		return nil
	}
	var params []stubtree.Param
	keywordOnly := false
	for i := uint(0); i < node.ChildCount(); i++ {
		p, ok := parameter(ctx, node.Child(i))
		if !ok {
			continue
		}
		switch p.Role {
		case stubtree.RoleVarArg, stubtree.RoleKeywordMarker:
			keywordOnly = true
		case stubtree.RolePositional:
			if keywordOnly {
				p.Role = stubtree.RoleKeywordOnly
			}
		}
		params = append(params, p)
	}

	if len(params) > 0 && params[0].Role == stubtree.RolePositional {
		switch {
		case params[0].Name == "self":
			params[0].Role = stubtree.RoleReceiverInstance
		case params[0].Name == "cls" && slices.Contains(decorators, "classmethod"):
			params[0].Role = stubtree.RoleReceiverType
		}
	}
	return params
}

func parameter(ctx *ExtractionContext, node *sitter.Node) (stubtree.Param, bool) {
	switch node.Kind() {
	case "identifier":
		return stubtree.Param{Name: ctx.Text(node)}, true
	case "default_parameter", "typed_default_parameter":
		return stubtree.Param{Name: ctx.FieldText(node, "name"), HasDefault: true}, true
	case "typed_parameter":
		if node.NamedChildCount() == 0 {
			return stubtree.Param{}, false
		}
		return parameter(ctx, node.NamedChild(0))
	case "list_splat_pattern":
		return stubtree.Param{Name: ctx.Text(node.NamedChild(0)), Role: stubtree.RoleVarArg}, true
	case "dictionary_splat_pattern":
		return stubtree.Param{Name: ctx.Text(node.NamedChild(0)), Role: stubtree.RoleKwArg}, true
	case "keyword_separator":
		return stubtree.Param{Name: "*", Role: stubtree.RoleKeywordMarker}, true
	case "positional_separator":
		return stubtree.Param{Name: "/", Role: stubtree.RolePositionalMarker}, true
	}
	return stubtree.Param{}, false
}

func (e *pythonExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if name == "" {
		return true
	}
	tree := ctx.Result.Tree
	qualified := qualify(tree, ctx.Scope, name)
	ctx.Result.DefinedTypes[name] = true

	bases, err := e.classBases(ctx, node.ChildByFieldName("superclasses"))
	if err != nil {
		ctx.Err = errors.AddContext(err, errors.CtxSymbol, qualified)
		return true
	}
	sig, _, err := signature.Extract(docstring(ctx, node))
	if err != nil {
		ctx.Err = errors.AddContext(err, errors.CtxSymbol, qualified)
		return true
	}

	id := tree.AddTypeDef(ctx.Scope, name, bases, sig)
	e.engine.WalkScoped(ctx, node.ChildByFieldName("body"), id)
	return true
}

// classBases returns the base expressions of a class in declaration order.
// Keyword arguments and computed bases are skipped.
func (e *pythonExtractor) classBases(ctx *ExtractionContext, args *sitter.Node) ([]string, error) {
	if args == nil {
		return nil, nil
	}
	var bases []string
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		switch arg.Kind() {
		case "identifier", "attribute", "subscript":
		default:
			continue
		}
		sig, err := signature.Parse(ctx.Text(arg))
		if err != nil {
			return nil, err
		}
		ctx.Result.require(sig.Required)
		bases = append(bases, sig.Return)
	}
	return bases, nil
}

func pythonDecorators(ctx *ExtractionContext, node *sitter.Node) []string {
	parent := node.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return nil
	}

	var decorators []string
	for i := uint(0); i < parent.ChildCount(); i++ {
		child := parent.Child(i)
		if child.Kind() != "decorator" || child.NamedChildCount() == 0 {
			continue
		}
		if name := decoratorName(ctx, child.NamedChild(0)); name != "" {
			decorators = append(decorators, name)
		}
	}
	return decorators
}

// decoratorName flattens a decorator expression into a dotted name. Shapes
// other than names, attribute chains and calls of those yield "".
func decoratorName(ctx *ExtractionContext, expr *sitter.Node) string {
	if expr == nil {
		return ""
	}
	switch expr.Kind() {
	case "identifier":
		return ctx.Text(expr)
	case "attribute":
		object := decoratorName(ctx, expr.ChildByFieldName("object"))
		if object == "" || expr.ChildByFieldName("object").Kind() == "call" {
			return ""
		}
		return object + "." + ctx.FieldText(expr, "attribute")
	case "call":
		return decoratorName(ctx, expr.ChildByFieldName("function"))
	}
	return ""
}

// docstring returns the raw docstring of a function or class definition.
func docstring(ctx *ExtractionContext, def *sitter.Node) string {
	body := def.ChildByFieldName("body")
	if body == nil {
		return ""
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		stmt := body.NamedChild(i)
		if stmt.Kind() == "comment" {
			continue
		}
		if stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
			return ""
		}
		str := stmt.NamedChild(0)
		if str.Kind() != "string" {
			return ""
		}
		return stringContent(ctx, str)
	}
	return ""
}

func stringContent(ctx *ExtractionContext, str *sitter.Node) string {
	var start, end *sitter.Node
	for i := uint(0); i < str.ChildCount(); i++ {
		child := str.Child(i)
		switch child.Kind() {
		case "string_start":
			start = child
		case "string_end":
			end = child
		}
	}
	if start == nil || end == nil || end.StartByte() < start.EndByte() {
		return ""
	}
	return string(ctx.Source[start.EndByte():end.StartByte()])
}

func isAsync(def *sitter.Node) bool {
	return def.ChildCount() > 0 && def.Child(0).Kind() == "async"
}

func qualify(tree *stubtree.Tree, scope stubtree.NodeID, name string) string {
	if q := tree.QualifiedName(scope); q != "" {
		return q + "." + name
	}
	return name
}
