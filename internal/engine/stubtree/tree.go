// Package stubtree holds the declaration tree a stub is rendered from.
//
// Nodes live in an arena owned by the Tree and are addressed by NodeID.
// A node's parent is stored as an id, so ownership flows only from the
// children slices of a container.
package stubtree

import "strings"

type NodeID int

// Root is the id of the module-level container of every tree.
const Root NodeID = 0

// None marks the absent parent of the root.
const None NodeID = -1

type Kind int

const (
	KindContainer Kind = iota
	KindVariable
	KindCallable
	KindTypeDef
)

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindVariable:
		return "variable"
	case KindCallable:
		return "callable"
	case KindTypeDef:
		return "class"
	}
	return "unknown"
}

// ParamRole tags a formal parameter with its syntactic role.
type ParamRole int

const (
	RolePositional ParamRole = iota
	RoleReceiverInstance
	RoleReceiverType
	RoleVarArg
	RoleKwArg
	RoleKeywordOnly
	// RoleKeywordMarker is the bare `*` separating keyword-only parameters.
	RoleKeywordMarker
	// RolePositionalMarker is the `/` closing positional-only parameters.
	RolePositionalMarker
)

// Typed reports whether a signature supplies a type for the role.
func (r ParamRole) Typed() bool {
	return r == RolePositional || r == RoleKeywordOnly
}

// Marker reports whether the role is a separator rather than a parameter.
func (r ParamRole) Marker() bool {
	return r == RoleKeywordMarker || r == RolePositionalMarker
}

type Param struct {
	Name       string
	Type       string
	Role       ParamRole
	HasDefault bool
}

// Node is a declaration. Which fields are meaningful depends on Kind.
type Node struct {
	ID     NodeID
	Kind   Kind
	Name   string
	Parent NodeID

	// Variable
	Type string

	// Callable
	Params     []Param
	ReturnType string
	Decorators []string
	Async      bool

	// TypeDef
	Bases     []string
	Signature string

	variables     []NodeID
	variableNames map[string]bool
	children      []NodeID
}

// Tree is the declaration tree of one source unit.
type Tree struct {
	nodes []*Node
}

func New() *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, &Node{ID: Root, Kind: KindContainer, Parent: None})
	return t
}

// Node returns the node for id, or nil for an unknown id.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

// Parent returns the owner of id. The root has no parent.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	n := t.Node(id)
	if n == nil || n.Parent == None {
		return None, false
	}
	return n.Parent, true
}

// Variables returns the variable ids owned by id in insertion order.
func (t *Tree) Variables(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.variables
	}
	return nil
}

// Children returns the callable and type ids owned by id in encounter order.
func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.children
	}
	return nil
}

// VariableNames returns the names of the variables owned by id.
func (t *Tree) VariableNames(id NodeID) map[string]bool {
	out := make(map[string]bool)
	for _, v := range t.Variables(id) {
		out[t.nodes[v].Name] = true
	}
	return out
}

// AddVariable attaches a variable to owner. A name already declared on the
// same owner is ignored and reported as not added.
func (t *Tree) AddVariable(owner NodeID, name, typ string) (NodeID, bool) {
	o := t.Node(owner)
	if o == nil || o.Kind == KindVariable {
		return None, false
	}
	if o.variableNames == nil {
		o.variableNames = make(map[string]bool)
	}
	if o.variableNames[name] {
		return None, false
	}
	id := t.add(&Node{Kind: KindVariable, Name: name, Type: typ, Parent: owner})
	o.variableNames[name] = true
	o.variables = append(o.variables, id)
	return id, true
}

// AddCallable attaches a function or method to owner.
func (t *Tree) AddCallable(owner NodeID, name string, params []Param, rtype string, decorators []string, async bool) NodeID {
	return t.addChild(owner, &Node{
		Kind:       KindCallable,
		Name:       name,
		Params:     params,
		ReturnType: rtype,
		Decorators: decorators,
		Async:      async,
	})
}

// AddTypeDef attaches a class to owner. sig is the class signature, kept for
// an initializer that has none of its own.
func (t *Tree) AddTypeDef(owner NodeID, name string, bases []string, sig string) NodeID {
	return t.addChild(owner, &Node{
		Kind:      KindTypeDef,
		Name:      name,
		Bases:     bases,
		Signature: sig,
	})
}

func (t *Tree) IsTypeDef(id NodeID) bool {
	n := t.Node(id)
	return n != nil && n.Kind == KindTypeDef
}

// QualifiedName joins the names from the root down to id with dots.
func (t *Tree) QualifiedName(id NodeID) string {
	var parts []string
	for n := t.Node(id); n != nil && n.ID != Root; n = t.Node(n.Parent) {
		parts = append([]string{n.Name}, parts...)
	}
	return strings.Join(parts, ".")
}

func (t *Tree) addChild(owner NodeID, n *Node) NodeID {
	o := t.Node(owner)
	if o == nil || o.Kind == KindVariable {
		return None
	}
	n.Parent = owner
	id := t.add(n)
	o.children = append(o.children, id)
	return id
}

func (t *Tree) add(n *Node) NodeID {
	n.ID = NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	return n.ID
}
