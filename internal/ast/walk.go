package ast

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func Walk(n Node, fn func(Node) bool) {
	if !n.IsValid() {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// Descendants returns every node below n whose kind is one of kinds (all
// nodes when kinds is empty). n itself is not included.
func Descendants(n Node, kinds ...Kind) []Node {
	var out []Node
	for _, c := range n.Children() {
		Walk(c, func(d Node) bool {
			if matchKind(d.Kind(), kinds) {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// DescendantsNoNested is like Descendants but does not enter nested
// class-like declarations, so the result only covers code that belongs to n.
func DescendantsNoNested(n Node, kinds ...Kind) []Node {
	var out []Node
	for _, c := range n.Children() {
		Walk(c, func(d Node) bool {
			if d.Kind().IsClassLike() {
				return false
			}
			if matchKind(d.Kind(), kinds) {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// FirstAncestor returns the closest strict ancestor satisfying pred.
func FirstAncestor(n Node, pred func(Node) bool) Node {
	for p := n.Parent(); p.IsValid(); p = p.Parent() {
		if pred(p) {
			return p
		}
	}
	return Node{}
}

// EnclosingClass returns the closest class-like ancestor of n.
func EnclosingClass(n Node) Node {
	return FirstAncestor(n, func(p Node) bool { return p.Kind().IsClassLike() })
}

// EnclosingOperation returns the closest operation-like ancestor of n.
func EnclosingOperation(n Node) Node {
	return FirstAncestor(n, func(p Node) bool { return p.Kind().IsOperationLike() })
}

// ContainedOperations returns the operations declared directly by a
// class-like node. Operations of nested classes are not included.
func ContainedOperations(cls Node) []Node {
	var out []Node
	for _, c := range cls.Children() {
		if c.Kind().IsOperationLike() {
			out = append(out, c)
		}
	}
	return out
}

// ContainedFields returns the fields declared directly by a class-like node.
func ContainedFields(cls Node) []Node {
	return cls.ChildrenOfKind(KindField)
}

// Classes returns every class-like declaration of the tree, nested ones
// included, in pre-order.
func Classes(t *Tree) []Node {
	return Descendants(t.Root(), KindClass, KindInterface, KindEnum, KindAnnotation)
}

// Operations returns every operation-like declaration of the tree.
func Operations(t *Tree) []Node {
	return Descendants(t.Root(), KindMethod, KindConstructor, KindTrigger)
}

// Parameters returns the parameter declarations of an operation.
func Parameters(op Node) []Node {
	return op.ChildrenOfKind(KindParameter)
}
