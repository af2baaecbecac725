package walker

import (
	"genstub/internal/engine/stubtree"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes a node of one kind.
// Returns true if the handler has processed children and the walker should stop.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node) bool

// ExtractionContext carries the state shared by all handlers of one walk.
type ExtractionContext struct {
	Source []byte
	Result *Result
	Opts   Options

	// Scope is the declaration that definitions found now attach to.
	Scope stubtree.NodeID
	// Err stops the walk once set.
	Err error

	lineStarts []uint
	root       *sitter.Node
}

// ExtractorEngine walks the syntax tree and dispatches node handlers by kind.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

func (e *ExtractorEngine) Walk(ctx *ExtractionContext, node *sitter.Node) {
	if node == nil || ctx.Err != nil {
		return
	}

	stop := false
	if handler, ok := e.handlers[node.Kind()]; ok {
		stop = handler(ctx, node)
	}

	if !stop {
		for i := uint(0); i < node.ChildCount(); i++ {
			e.Walk(ctx, node.Child(i))
		}
	}
}

// WalkScoped walks node with scope as the current scope, restoring the
// previous scope afterwards.
func (e *ExtractorEngine) WalkScoped(ctx *ExtractionContext, node *sitter.Node, scope stubtree.NodeID) {
	prev := ctx.Scope
	ctx.Scope = scope
	e.Walk(ctx, node)
	ctx.Scope = prev
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) FieldText(node *sitter.Node, field string) string {
	if node == nil {
		return ""
	}
	return c.Text(node.ChildByFieldName(field))
}

// Line returns the 1-based line a node starts on.
func (c *ExtractionContext) Line(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// SourceLine returns the raw text of the 0-based row and the byte offset
// it starts at.
func (c *ExtractionContext) SourceLine(row uint) (string, uint) {
	if int(row) >= len(c.lineStarts) {
		return "", 0
	}
	start := c.lineStarts[row]
	end := uint(len(c.Source))
	if int(row)+1 < len(c.lineStarts) {
		end = c.lineStarts[row+1] - 1
	}
	line := string(c.Source[start:end])
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, start
}

// IsComment reports whether the byte at offset belongs to a comment token.
func (c *ExtractionContext) IsComment(offset uint) bool {
	node := c.root.DescendantForByteRange(offset, offset+1)
	return node != nil && node.Kind() == "comment"
}

func lineStarts(source []byte) []uint {
	starts := []uint{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, uint(i+1))
		}
	}
	return starts
}
