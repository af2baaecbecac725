// Package stub renders a declaration tree and its import plan as the text
// of a Python stub file.
package stub

import (
	"sort"
	"strings"

	"genstub/internal/engine/resolver"
	"genstub/internal/engine/stubtree"
	"genstub/internal/engine/walker"
)

const (
	DefaultLineLength = 79
	DefaultIndent     = 4
)

// echoedDecorators are reproduced in stubs; other decorators are dropped.
var echoedDecorators = map[string]bool{
	"property":     true,
	"staticmethod": true,
	"classmethod":  true,
}

type Options struct {
	Permissive bool
	LineLength int
	Indent     int
}

func DefaultOptions() Options {
	return Options{LineLength: DefaultLineLength, Indent: DefaultIndent}
}

func (o Options) withDefaults() Options {
	if o.LineLength <= 0 {
		o.LineLength = DefaultLineLength
	}
	if o.Indent <= 0 {
		o.Indent = DefaultIndent
	}
	return o
}

type renderer struct {
	tree   *stubtree.Tree
	limit  int
	indent string
}

// Render produces the stub text. The result is empty when there is nothing
// to declare.
func Render(res *walker.Result, rep resolver.Report, opts Options) string {
	opts = opts.withDefaults()
	r := &renderer{
		tree:   res.Tree,
		limit:  opts.LineLength,
		indent: strings.Repeat(" ", opts.Indent),
	}

	var sections []string
	if len(rep.StandardVocabulary) > 0 {
		sections = append(sections, r.importFrom(resolver.TypingModule, rep.StandardVocabulary))
	}
	if len(rep.Imported) > 0 {
		var lines []string
		for _, imp := range rep.Imported {
			lines = append(lines, r.importFrom(imp.Origin, []string{imp.Key}))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if namespaces := rep.Namespaces(); len(namespaces) > 0 {
		var lines []string
		for _, imp := range namespaces {
			if imp.Renamed() {
				lines = append(lines, "import "+imp.Name()+" as "+imp.Alias())
			} else {
				lines = append(lines, "import "+imp.Key)
			}
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if len(res.Aliases) > 0 {
		var lines []string
		for _, a := range res.Aliases {
			lines = append(lines, a.Name+" = "+a.Signature)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	var out strings.Builder
	for i, section := range sections {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(section + "\n")
	}
	if len(sections) > 0 {
		out.WriteString("\n")
	}

	lines := r.container(stubtree.Root)
	for i, line := range lines {
		if i > 0 && needsBlankLine(lines, i) {
			out.WriteString("\n")
		}
		out.WriteString(line + "\n")
	}

	if len(lines) == 0 && len(sections) == 0 {
		return ""
	}
	return out.String()
}

// needsBlankLine separates top-level declarations: a class from anything
// but a preceding one-line class, and a function from a preceding class or
// class body.
func needsBlankLine(lines []string, i int) bool {
	prev, line := lines[i-1], lines[i]
	if strings.HasPrefix(line, "class ") {
		nextIndented := i+1 < len(lines) && strings.HasPrefix(lines[i+1], " ")
		return !strings.HasPrefix(prev, "class ") || nextIndented
	}
	if strings.HasPrefix(line, "def ") || strings.HasPrefix(line, "async def ") {
		return strings.HasPrefix(prev, " ") || strings.HasPrefix(prev, "class ")
	}
	return false
}

// importFrom builds a from-import statement. Plain names share one
// statement, sorted and wrapped when too long; renamed names get one line
// each.
func (r *renderer) importFrom(module string, keys []string) string {
	var regular []string
	var lines []string
	for _, key := range keys {
		imp := stubtree.Import{Key: key, Origin: module}
		if !imp.Renamed() {
			regular = append(regular, key)
		}
	}
	if len(regular) > 0 {
		sort.Strings(regular)
		line := "from " + module + " import " + strings.Join(regular, ", ")
		if len(line) > r.limit {
			line = "from " + module + " import (\n" + r.indent +
				strings.Join(regular, ",\n"+r.indent) + ",\n)"
		}
		lines = append(lines, line)
	}
	for _, key := range keys {
		imp := stubtree.Import{Key: key, Origin: module}
		if imp.Renamed() {
			lines = append(lines, "from "+module+" import "+imp.Name()+" as "+imp.Alias())
		}
	}
	return strings.Join(lines, "\n")
}

// container renders the variables, then the callables and classes owned
// by id.
func (r *renderer) container(id stubtree.NodeID) []string {
	var lines []string
	vars := r.tree.Variables(id)
	for _, v := range vars {
		n := r.tree.Node(v)
		lines = append(lines, n.Name+" = ...  # type: "+n.Type)
	}
	children := r.tree.Children(id)
	if len(vars) > 0 && len(children) > 0 && !r.tree.IsTypeDef(id) {
		lines = append(lines, "")
	}
	for _, c := range children {
		switch r.tree.Node(c).Kind {
		case stubtree.KindCallable:
			lines = append(lines, r.callable(c)...)
		case stubtree.KindTypeDef:
			lines = append(lines, r.typeDef(c)...)
		}
	}
	return lines
}

func (r *renderer) typeDef(id stubtree.NodeID) []string {
	n := r.tree.Node(id)
	head := "class " + n.Name
	if len(n.Bases) > 0 {
		head += "(" + strings.Join(n.Bases, ", ") + ")"
	}
	if len(r.tree.Children(id)) == 0 && len(r.tree.Variables(id)) == 0 {
		return []string{head + ": ..."}
	}
	lines := []string{head + ":"}
	for _, line := range r.container(id) {
		lines = append(lines, r.indent+line)
	}
	return lines
}

func (r *renderer) callable(id stubtree.NodeID) []string {
	n := r.tree.Node(id)
	var lines []string
	for _, d := range n.Decorators {
		if echoedDecorators[d] || strings.HasSuffix(d, ".setter") {
			lines = append(lines, "@"+d)
		}
	}

	params := make([]string, 0, len(n.Params))
	for _, p := range n.Params {
		params = append(params, ParamDecl(p))
	}

	def := "def "
	if n.Async {
		def = "async def "
	}
	open := def + n.Name + "("
	closing := ") -> " + n.ReturnType + ": ..."
	joined := strings.Join(params, ", ")

	switch {
	case len(open+joined+closing) <= r.limit:
		lines = append(lines, open+joined+closing)
	case len(r.indent+joined) <= r.limit:
		lines = append(lines, open, r.indent+joined, closing)
	default:
		lines = append(lines, open)
		for _, p := range params {
			lines = append(lines, r.indent+p+",")
		}
		lines = append(lines, closing)
	}
	return lines
}

// ParamDecl renders a parameter as it appears in a stub prototype.
func ParamDecl(p stubtree.Param) string {
	var decl string
	switch p.Role {
	case stubtree.RoleVarArg:
		decl = "*" + p.Name
	case stubtree.RoleKwArg:
		decl = "**" + p.Name
	case stubtree.RoleKeywordMarker:
		return "*"
	case stubtree.RolePositionalMarker:
		return "/"
	default:
		decl = p.Name
	}
	if p.Type != "" {
		decl += ": " + p.Type
	}
	if p.HasDefault {
		decl += " = ..."
	}
	return decl
}
