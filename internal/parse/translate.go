package parse

import (
	"context"
	"strings"

	"codemetrics/internal/ast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"go.uber.org/zap"
)

// Scope maps variable names to the qualified class name of their type, so
// call targets on those variables can be resolved.
type Scope struct {
	symbols map[string]string
	Parent  *Scope
}

func NewScope(parent *Scope) *Scope {
	return &Scope{symbols: make(map[string]string), Parent: parent}
}

// Declare binds name to typ. An empty type shadows outer bindings.
func (s *Scope) Declare(name, typ string) {
	if name != "" {
		s.symbols[name] = typ
	}
}

func (s *Scope) Resolve(name string) string {
	for cur := s; cur != nil; cur = cur.Parent {
		if typ, ok := cur.symbols[name]; ok {
			return typ
		}
	}
	return ""
}

type SyntaxTreeVisitor interface {
	// TraverseNode translates tsNode under parent. It returns the id of the
	// node it created, or ast.InvalidNodeID when tsNode only contributed
	// children.
	TraverseNode(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID
}

// Param is a parameter as read from a declaration. Type is empty when the
// source does not declare one.
type Param struct {
	Name string
	Type string
}

// TranslateFromSyntaxTree holds the state shared by the language visitors
// while one file is translated.
type TranslateFromSyntaxTree struct {
	Builder      *ast.Builder
	FileContent  []byte
	Visitor      SyntaxTreeVisitor
	Logger       *zap.Logger
	CurrentScope *Scope

	// Imports maps names visible in the file to the qualified name they
	// import: a class for Java, a package for Go.
	Imports map[string]string
	// Classes maps simple class names declared in the file to their node.
	Classes map[string]ast.NodeID
}

func NewTranslateFromSyntaxTree(b *ast.Builder, fileContent []byte, logger *zap.Logger) *TranslateFromSyntaxTree {
	return &TranslateFromSyntaxTree{
		Builder:      b,
		FileContent:  fileContent,
		Logger:       logger,
		CurrentScope: NewScope(nil),
		Imports:      make(map[string]string),
		Classes:      make(map[string]ast.NodeID),
	}
}

func (t *TranslateFromSyntaxTree) PushScope() {
	t.CurrentScope = NewScope(t.CurrentScope)
}

func (t *TranslateFromSyntaxTree) PopScope() {
	if t.CurrentScope.Parent == nil {
		t.Logger.Error("Scope stack underflow")
		return
	}
	t.CurrentScope = t.CurrentScope.Parent
}

func (t *TranslateFromSyntaxTree) TreeChildByKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

func (t *TranslateFromSyntaxTree) TreeChildrenByKind(node *tree_sitter.Node, kinds ...string) []*tree_sitter.Node {
	if node == nil {
		return nil
	}
	var children []*tree_sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		for _, kind := range kinds {
			if child.Kind() == kind {
				children = append(children, child)
				break
			}
		}
	}
	return children
}

func (t *TranslateFromSyntaxTree) TreeChildByFieldName(node *tree_sitter.Node, fieldName string) *tree_sitter.Node {
	if node == nil {
		return nil
	}
	return node.ChildByFieldName(fieldName)
}

func (t *TranslateFromSyntaxTree) SubtreeNodeByKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == kind {
			return child
		}
		if result := t.SubtreeNodeByKind(child, kind); result != nil {
			return result
		}
	}
	return nil
}

func (t *TranslateFromSyntaxTree) String(node *tree_sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(t.FileContent[node.StartByte():node.EndByte()])
}

func (t *TranslateFromSyntaxTree) Children(node *tree_sitter.Node) []*tree_sitter.Node {
	if node == nil {
		return nil
	}
	var children []*tree_sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		children = append(children, node.Child(i))
	}
	return children
}

func (t *TranslateFromSyntaxTree) NamedChildren(node *tree_sitter.Node) []*tree_sitter.Node {
	if node == nil {
		return nil
	}
	var children []*tree_sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		children = append(children, node.NamedChild(i))
	}
	return children
}

// HasToken reports whether node has a direct child whose text is token.
// Keywords such as "static" or "get" are anonymous children in most grammars.
func (t *TranslateFromSyntaxTree) HasToken(node *tree_sitter.Node, token string) bool {
	for _, c := range t.Children(node) {
		if c.Kind() == token || t.String(c) == token {
			return true
		}
	}
	return false
}

func (t *TranslateFromSyntaxTree) GetTreeNodeName(node *tree_sitter.Node) string {
	if node == nil {
		return ""
	}
	kind := node.Kind()
	if kind == "identifier" || strings.HasSuffix(kind, "_identifier") {
		return t.String(node)
	}
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return t.String(nameNode)
	}
	for _, k := range []string{"identifier", "type_identifier", "property_identifier", "field_identifier"} {
		if idNode := t.TreeChildByKind(node, k); idNode != nil {
			return t.String(idNode)
		}
	}
	return ""
}

// Add creates a node spanning tsNode. Tree-sitter rows are zero based.
func (t *TranslateFromSyntaxTree) Add(parent ast.NodeID, kind ast.Kind, name string, tsNode *tree_sitter.Node) ast.NodeID {
	id := t.Builder.Add(parent, kind, name)
	if tsNode != nil {
		start, end := tsNode.StartPosition(), tsNode.EndPosition()
		t.Builder.SetRange(id, int(start.Row)+1, int(start.Column)+1, int(end.Row)+1, int(end.Column)+1)
	}
	return id
}

func (t *TranslateFromSyntaxTree) TraverseChildren(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) []ast.NodeID {
	if tsNode == nil {
		return nil
	}
	var childIDs []ast.NodeID
	for i := uint(0); i < tsNode.ChildCount(); i++ {
		if id := t.Visitor.TraverseNode(ctx, tsNode.Child(i), parent); id != ast.InvalidNodeID {
			childIDs = append(childIDs, id)
		}
	}
	return childIDs
}

// HandleBlock adds a block with its own variable scope.
func (t *TranslateFromSyntaxTree) HandleBlock(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	id := t.Add(parent, ast.KindBlock, "", tsNode)
	t.PushScope()
	defer t.PopScope()
	t.TraverseChildren(ctx, tsNode, id)
	return id
}

// HandleStatement adds a node of kind and translates the children under it.
func (t *TranslateFromSyntaxTree) HandleStatement(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID, kind ast.Kind) ast.NodeID {
	id := t.Add(parent, kind, "", tsNode)
	t.TraverseChildren(ctx, tsNode, id)
	return id
}

// HandleBinary adds a boolean operator node for short-circuit operators and
// is transparent for the others.
func (t *TranslateFromSyntaxTree) HandleBinary(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID, boolOps ...string) ast.NodeID {
	op := t.String(t.TreeChildByFieldName(tsNode, "operator"))
	for _, b := range boolOps {
		if op == b {
			id := t.Add(parent, ast.KindBooleanOp, op, tsNode)
			t.TraverseChildren(ctx, tsNode, id)
			return id
		}
	}
	t.TraverseChildren(ctx, tsNode, parent)
	return ast.InvalidNodeID
}

// CreateOperation adds an operation with its parameters and translates body
// under it. Parameters are declared in the operation's scope.
func (t *TranslateFromSyntaxTree) CreateOperation(ctx context.Context, parent ast.NodeID, tsNode *tree_sitter.Node,
	kind ast.Kind, name string, mods ast.Modifiers, params []Param, body *tree_sitter.Node) ast.NodeID {
	id := t.Add(parent, kind, name, tsNode)
	t.Builder.AddModifiers(id, mods)

	t.PushScope()
	defer t.PopScope()
	for _, p := range params {
		pid := t.Builder.Add(id, ast.KindParameter, p.Name)
		t.Builder.SetType(pid, p.Type)
		t.CurrentScope.Declare(p.Name, t.ResolveType(p.Type))
	}
	if body != nil {
		t.Visitor.TraverseNode(ctx, body, id)
	}
	return id
}

// AddField adds a field declaration and binds its type in the current scope.
func (t *TranslateFromSyntaxTree) AddField(parent ast.NodeID, tsNode *tree_sitter.Node, name, typ string, mods ast.Modifiers) ast.NodeID {
	id := t.Add(parent, ast.KindField, name, tsNode)
	t.Builder.AddModifiers(id, mods)
	t.Builder.SetType(id, typ)
	t.CurrentScope.Declare(name, t.ResolveType(typ))
	return id
}

// HandleCall adds a call with its resolved target and translates the callee
// and arguments under it, so nested calls are kept.
func (t *TranslateFromSyntaxTree) HandleCall(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID, target string) ast.NodeID {
	id := t.Add(parent, ast.KindCall, "", tsNode)
	t.Builder.SetTarget(id, target)
	t.TraverseChildren(ctx, tsNode, id)
	return id
}

// RegisterClass makes a class declared in this file resolvable by its simple
// name.
func (t *TranslateFromSyntaxTree) RegisterClass(name string, id ast.NodeID) {
	if _, ok := t.Classes[name]; !ok && name != "" {
		t.Classes[name] = id
	}
}

// ResolveType maps a type as written in the source to a qualified class
// name, or "" when it cannot be resolved. Local classes win over imports;
// other simple names are assumed to live in the file's package.
func (t *TranslateFromSyntaxTree) ResolveType(typ string) string {
	typ = strings.TrimSpace(typ)
	typ = strings.TrimLeft(typ, "*&")
	if i := strings.IndexAny(typ, "<["); i >= 0 {
		typ = typ[:i]
	}
	if typ == "" || typ == ast.UnknownType || isPrimitive(typ) {
		return ""
	}
	if id, ok := t.Classes[typ]; ok {
		return t.Builder.ClassQualifiedName(id).ClassString()
	}
	if q, ok := t.Imports[typ]; ok {
		return ClassFromDotted(q)
	}
	if pkg, name, ok := strings.Cut(typ, "."); ok && !strings.Contains(name, ".") {
		if q, ok := t.Imports[pkg]; ok {
			return ClassFromDotted(q + "." + name)
		}
	}
	if strings.Contains(typ, ".") {
		return ClassFromDotted(typ)
	}
	q := ast.QualifiedName{Packages: t.Builder.Package(), Classes: []string{typ}}
	return q.ClassString()
}

// OwnClass returns the qualified name of the innermost class enclosing id.
func (t *TranslateFromSyntaxTree) OwnClass(id ast.NodeID) string {
	for cur := id; cur != ast.InvalidNodeID; cur = t.Builder.Parent(cur) {
		if t.Builder.Kind(cur).IsClassLike() {
			return t.Builder.ClassQualifiedName(cur).ClassString()
		}
	}
	return ""
}

// ClassFromDotted converts a dotted name as written in imports, such as
// "com.acme.Foo", into the class form of a qualified name.
func ClassFromDotted(name string) string {
	if name == "" {
		return ""
	}
	segs := strings.Split(name, ".")
	q := ast.QualifiedName{Packages: segs[:len(segs)-1], Classes: segs[len(segs)-1:]}
	return q.ClassString()
}

// CallTarget renders the qualified name of a call on class with arity
// unknown arguments. class is already in qualified name form. It returns ""
// when class is unknown.
func CallTarget(class, method string, arity int) string {
	if class == "" || method == "" {
		return ""
	}
	params := make([]string, arity)
	for i := range params {
		params[i] = ast.UnknownType
	}
	return class + "#" + ast.EscapeSegment(method) + "(" + strings.Join(params, ",") + ")"
}

// FunctionTarget renders the qualified name of a package-level function.
func FunctionTarget(pkg []string, name string, arity int) string {
	q := ast.QualifiedName{Packages: pkg, Operation: name, Params: make([]string, arity)}
	for i := range q.Params {
		q.Params[i] = ast.UnknownType
	}
	return q.String()
}

// Arity counts the named arguments of an argument list.
func (t *TranslateFromSyntaxTree) Arity(args *tree_sitter.Node) int {
	n := 0
	for _, c := range t.NamedChildren(args) {
		if !strings.Contains(c.Kind(), "comment") {
			n++
		}
	}
	return n
}

var primitives = map[string]bool{
	"int": true, "long": true, "short": true, "byte": true, "char": true, "boolean": true,
	"float": true, "double": true, "void": true, "var": true, "String": true, "Object": true,
	"string": true, "bool": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "rune": true, "error": true, "any": true, "number": true,
	"str": true, "list": true, "dict": true, "None": true,
}

func isPrimitive(typ string) bool {
	return primitives[typ]
}

// leadingUpper reports whether name starts with an upper case ASCII letter.
func leadingUpper(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
