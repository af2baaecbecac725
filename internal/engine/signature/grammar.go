package signature

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Identifiers keep their dotted qualification as a single token so that
// `x.y.A` is required as one unit.
var signatureLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Arrow", Pattern: `->`},
	{Name: "Ellipsis", Pattern: `\.\.\.`},
	{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*(?:\.[\p{L}_][\p{L}\p{N}_]*)*`},
	{Name: "Punct", Pattern: `[\[\](),|]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var grammar = participle.MustBuild[signatureNode](
	participle.Lexer(signatureLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(4),
)

type signatureNode struct {
	Callable *callableNode `parser:"  @@"`
	Bare     *typeNode     `parser:"| @@"`
}

type callableNode struct {
	Open   bool        `parser:"@'('"`
	Params []*typeNode `parser:"( @@ ( ',' @@ )* )? ')'"`
	Return *typeNode   `parser:"Arrow @@"`
}

// typeNode is a type expression, optionally a PEP 604 union.
type typeNode struct {
	Head  *atomNode   `parser:"@@"`
	Union []*atomNode `parser:"( '|' @@ )*"`
}

// atomNode is a name, a literal, the empty tuple `()` or a bare list, with
// optional generic arguments. Names inside literals are not required.
type atomNode struct {
	Name    string     `parser:"(  @Ident"`
	Literal string     `parser:" | @( String | Number | Ellipsis )"`
	Empty   bool       `parser:" | @( '(' ')' )"`
	Group   *groupNode `parser:" | @@ )"`
	Args    *groupNode `parser:"@@?"`
}

// groupNode is a bracketed, comma separated list: either the arguments of a
// generic (`Dict[str, int]`) or a bare list (`Callable[[int], str]`).
type groupNode struct {
	Open  bool        `parser:"@'['"`
	Items []*typeNode `parser:"( @@ ( ',' @@ )* )? ']'"`
}

func (t *typeNode) String() string {
	parts := make([]string, 0, 1+len(t.Union))
	parts = append(parts, t.Head.String())
	for _, a := range t.Union {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " | ")
}

func (t *typeNode) collect(into map[string]bool) {
	t.Head.collect(into)
	for _, a := range t.Union {
		a.collect(into)
	}
}

func (a *atomNode) String() string {
	var b strings.Builder
	switch {
	case a.Name != "":
		b.WriteString(a.Name)
	case a.Literal != "":
		b.WriteString(a.Literal)
	case a.Empty:
		b.WriteString("()")
	case a.Group != nil:
		b.WriteString(a.Group.String())
	}
	if a.Args != nil {
		b.WriteString(a.Args.String())
	}
	return b.String()
}

func (a *atomNode) collect(into map[string]bool) {
	if a.Name != "" {
		into[a.Name] = true
	}
	if a.Group != nil {
		a.Group.collect(into)
	}
	if a.Args != nil {
		a.Args.collect(into)
	}
}

func (g *groupNode) String() string {
	items := make([]string, 0, len(g.Items))
	for _, item := range g.Items {
		items = append(items, item.String())
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func (g *groupNode) collect(into map[string]bool) {
	for _, item := range g.Items {
		item.collect(into)
	}
}
