package ast

import "fmt"

// NodeID is the stable index of a node inside its tree's arena.
type NodeID int32

const InvalidNodeID NodeID = -1

type nodeData struct {
	kind      Kind
	name      string
	parent    NodeID
	children  []NodeID
	beginLine int
	beginCol  int
	endLine   int
	endCol    int
	mods      Modifiers
	typeName  string
	target    string
	qname     *QualifiedName
}

// Tree is an immutable arena of nodes for one source file. Node 0 is the
// compilation unit.
type Tree struct {
	path     string
	language string
	pkg      []string
	nodes    []nodeData
}

func (t *Tree) Path() string     { return t.path }
func (t *Tree) Language() string { return t.language }
func (t *Tree) Len() int         { return len(t.nodes) }

// Package returns the package segments the file declares.
func (t *Tree) Package() []string {
	return append([]string(nil), t.pkg...)
}

func (t *Tree) Root() Node {
	return Node{tree: t, id: 0}
}

// Node returns the handle for id, or the zero Node when id is out of range.
func (t *Tree) Node(id NodeID) Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return Node{}
	}
	return Node{tree: t, id: id}
}

// Node is a lightweight, comparable handle to a node in a Tree. The zero
// value is an invalid node.
type Node struct {
	tree *Tree
	id   NodeID
}

func (n Node) IsValid() bool {
	return n.tree != nil && n.id >= 0 && int(n.id) < len(n.tree.nodes)
}

func (n Node) ID() NodeID {
	if !n.IsValid() {
		return InvalidNodeID
	}
	return n.id
}

func (n Node) Tree() *Tree { return n.tree }

func (n Node) data() *nodeData {
	return &n.tree.nodes[n.id]
}

func (n Node) Kind() Kind {
	if !n.IsValid() {
		return KindOther
	}
	return n.data().kind
}

func (n Node) Name() string {
	if !n.IsValid() {
		return ""
	}
	return n.data().name
}

func (n Node) Parent() Node {
	if !n.IsValid() || n.data().parent == InvalidNodeID {
		return Node{}
	}
	return Node{tree: n.tree, id: n.data().parent}
}

func (n Node) NumChildren() int {
	if !n.IsValid() {
		return 0
	}
	return len(n.data().children)
}

func (n Node) Child(i int) Node {
	if !n.IsValid() || i < 0 || i >= len(n.data().children) {
		return Node{}
	}
	return Node{tree: n.tree, id: n.data().children[i]}
}

func (n Node) Children() []Node {
	if !n.IsValid() {
		return nil
	}
	ids := n.data().children
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{tree: n.tree, id: id}
	}
	return out
}

// ChildrenOfKind returns the direct children whose kind is one of kinds.
func (n Node) ChildrenOfKind(kinds ...Kind) []Node {
	var out []Node
	for _, c := range n.Children() {
		if matchKind(c.Kind(), kinds) {
			out = append(out, c)
		}
	}
	return out
}

func (n Node) indexInParent() int {
	p := n.Parent()
	if !p.IsValid() {
		return -1
	}
	for i, id := range p.data().children {
		if id == n.id {
			return i
		}
	}
	return -1
}

func (n Node) NextSibling() Node {
	i := n.indexInParent()
	if i < 0 {
		return Node{}
	}
	return n.Parent().Child(i + 1)
}

func (n Node) PrevSibling() Node {
	i := n.indexInParent()
	if i < 0 {
		return Node{}
	}
	return n.Parent().Child(i - 1)
}

// BeginLine is 1-based.
func (n Node) BeginLine() int {
	if !n.IsValid() {
		return 0
	}
	return n.data().beginLine
}

func (n Node) EndLine() int {
	if !n.IsValid() {
		return 0
	}
	return n.data().endLine
}

func (n Node) BeginColumn() int {
	if !n.IsValid() {
		return 0
	}
	return n.data().beginCol
}

func (n Node) EndColumn() int {
	if !n.IsValid() {
		return 0
	}
	return n.data().endCol
}

func (n Node) Modifiers() Modifiers {
	if !n.IsValid() {
		return 0
	}
	return n.data().mods
}

func (n Node) Has(mod Modifiers) bool {
	return n.Modifiers().Has(mod)
}

// TypeName is the declared type of fields, parameters and local variables.
func (n Node) TypeName() string {
	if !n.IsValid() {
		return ""
	}
	return n.data().typeName
}

// Target is the resolved qualified name of the operation a call node
// invokes, empty when the front-end could not resolve it.
func (n Node) Target() string {
	if !n.IsValid() {
		return ""
	}
	return n.data().target
}

// QualifiedName is available on class-like and operation-like nodes.
func (n Node) QualifiedName() (QualifiedName, bool) {
	if !n.IsValid() || n.data().qname == nil {
		return QualifiedName{}, false
	}
	return *n.data().qname, true
}

func (n Node) String() string {
	if !n.IsValid() {
		return "<invalid>"
	}
	return fmt.Sprintf("%s %q [%d:%d]", n.Kind(), n.Name(), n.BeginLine(), n.EndLine())
}

func matchKind(k Kind, kinds []Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
