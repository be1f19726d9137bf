package ast

import "strings"

// Builder assembles a Tree. Parents must be added before their children.
// A Builder is not safe for concurrent use and must not be used after Build.
type Builder struct {
	tree *Tree
}

func NewBuilder(path, language string) *Builder {
	t := &Tree{path: path, language: language}
	t.nodes = append(t.nodes, nodeData{kind: KindCompilationUnit, parent: InvalidNodeID})
	return &Builder{tree: t}
}

func (b *Builder) Root() NodeID { return 0 }

// SetPackage sets the package of the file as dot-separated segments.
func (b *Builder) SetPackage(pkg string) {
	b.tree.pkg = nil
	for _, seg := range strings.Split(pkg, ".") {
		if seg != "" {
			b.tree.pkg = append(b.tree.pkg, seg)
		}
	}
}

func (b *Builder) Package() []string {
	return append([]string(nil), b.tree.pkg...)
}

// Add appends a child of parent and returns its id. An invalid parent
// attaches the node to the root.
func (b *Builder) Add(parent NodeID, kind Kind, name string) NodeID {
	if parent < 0 || int(parent) >= len(b.tree.nodes) {
		parent = 0
	}
	id := NodeID(len(b.tree.nodes))
	p := b.tree.nodes[parent]
	b.tree.nodes = append(b.tree.nodes, nodeData{
		kind:      kind,
		name:      name,
		parent:    parent,
		beginLine: p.beginLine,
		endLine:   p.endLine,
	})
	b.tree.nodes[parent].children = append(b.tree.nodes[parent].children, id)
	return id
}

func (b *Builder) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(b.tree.nodes)
}

func (b *Builder) SetRange(id NodeID, beginLine, beginCol, endLine, endCol int) {
	if !b.valid(id) {
		return
	}
	d := &b.tree.nodes[id]
	d.beginLine, d.beginCol, d.endLine, d.endCol = beginLine, beginCol, endLine, endCol
}

func (b *Builder) SetLines(id NodeID, beginLine, endLine int) {
	b.SetRange(id, beginLine, 0, endLine, 0)
}

func (b *Builder) AddModifiers(id NodeID, mods Modifiers) {
	if b.valid(id) {
		b.tree.nodes[id].mods |= mods
	}
}

func (b *Builder) SetType(id NodeID, typeName string) {
	if b.valid(id) {
		b.tree.nodes[id].typeName = typeName
	}
}

func (b *Builder) SetTarget(id NodeID, target string) {
	if b.valid(id) {
		b.tree.nodes[id].target = target
	}
}

func (b *Builder) SetName(id NodeID, name string) {
	if b.valid(id) {
		b.tree.nodes[id].name = name
	}
}

func (b *Builder) Kind(id NodeID) Kind {
	if !b.valid(id) {
		return KindOther
	}
	return b.tree.nodes[id].kind
}

func (b *Builder) Name(id NodeID) string {
	if !b.valid(id) {
		return ""
	}
	return b.tree.nodes[id].name
}

func (b *Builder) Parent(id NodeID) NodeID {
	if !b.valid(id) {
		return InvalidNodeID
	}
	return b.tree.nodes[id].parent
}

// ClassQualifiedName computes the qualified name a class-like node will get
// once the tree is built.
func (b *Builder) ClassQualifiedName(id NodeID) QualifiedName {
	return b.tree.classQName(id)
}

// Build computes qualified names for class-like and operation-like nodes and
// returns the finished tree.
func (b *Builder) Build() *Tree {
	t := b.tree
	for i := range t.nodes {
		id := NodeID(i)
		switch k := t.nodes[i].kind; {
		case k.IsClassLike():
			q := t.classQName(id)
			t.nodes[i].qname = &q
		case k.IsOperationLike():
			q := t.operationQName(id)
			t.nodes[i].qname = &q
		}
	}
	b.tree = nil
	return t
}

func (t *Tree) enclosingClassID(id NodeID) NodeID {
	for p := t.nodes[id].parent; p != InvalidNodeID; p = t.nodes[p].parent {
		if t.nodes[p].kind.IsClassLike() {
			return p
		}
	}
	return InvalidNodeID
}

func (t *Tree) classQName(id NodeID) QualifiedName {
	var chain []string
	for cur := id; cur != InvalidNodeID; cur = t.enclosingClassID(cur) {
		chain = append([]string{t.nodes[cur].name}, chain...)
	}
	return QualifiedName{
		Packages: append([]string(nil), t.pkg...),
		Classes:  chain,
	}
}

func (t *Tree) operationQName(id NodeID) QualifiedName {
	var q QualifiedName
	if cls := t.enclosingClassID(id); cls != InvalidNodeID {
		q = t.classQName(cls)
	} else {
		q = QualifiedName{Packages: append([]string(nil), t.pkg...)}
	}
	q.Operation = t.nodes[id].name
	q.Params = []string{}
	for _, c := range t.nodes[id].children {
		if t.nodes[c].kind == KindParameter {
			q.Params = append(q.Params, NormalizeType(t.nodes[c].typeName))
		}
	}
	return q
}
