package parse

import (
	"context"
	"strings"

	"codemetrics/internal/ast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"go.uber.org/zap"
)

type PythonVisitor struct {
	translate *TranslateFromSyntaxTree
	logger    *zap.Logger
	// fieldTypes maps "Class.field" to the class assigned to self.field
	fieldTypes map[string]string
	fields     map[ast.NodeID]map[string]bool
}

func NewPythonVisitor(logger *zap.Logger, ts *TranslateFromSyntaxTree) *PythonVisitor {
	return &PythonVisitor{
		translate:  ts,
		logger:     logger,
		fieldTypes: make(map[string]string),
		fields:     make(map[ast.NodeID]map[string]bool),
	}
}

func (pv *PythonVisitor) TraverseNode(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	if tsNode == nil {
		return ast.InvalidNodeID
	}

	switch tsNode.Kind() {
	case "module":
		pv.translate.TraverseChildren(ctx, tsNode, parent)
		return ast.InvalidNodeID
	case "import_statement", "import_from_statement", "future_import_statement":
		return pv.handleImport(tsNode, parent)
	case "class_definition":
		return pv.handleClassDefinition(ctx, tsNode, parent)
	case "decorated_definition":
		return pv.handleDecorated(ctx, tsNode, parent)
	case "function_definition":
		return pv.handleFunctionDefinition(ctx, tsNode, parent, 0)
	case "block":
		return pv.translate.HandleBlock(ctx, tsNode, parent)
	case "if_statement", "elif_clause":
		return pv.translate.HandleStatement(ctx, tsNode, parent, ast.KindIf)
	case "for_statement", "while_statement":
		return pv.translate.HandleStatement(ctx, tsNode, parent, ast.KindLoop)
	case "try_statement":
		return pv.translate.HandleStatement(ctx, tsNode, parent, ast.KindTry)
	case "except_clause", "except_group_clause":
		return pv.translate.HandleStatement(ctx, tsNode, parent, ast.KindCatch)
	case "match_statement":
		return pv.translate.HandleStatement(ctx, tsNode, parent, ast.KindSwitch)
	case "case_clause":
		return pv.handleCaseClause(ctx, tsNode, parent)
	case "conditional_expression":
		return pv.translate.HandleStatement(ctx, tsNode, parent, ast.KindTernary)
	case "boolean_operator":
		return pv.translate.HandleStatement(ctx, tsNode, parent, ast.KindBooleanOp)
	case "call":
		return pv.handleCall(ctx, tsNode, parent)
	case "lambda":
		return pv.translate.HandleStatement(ctx, tsNode, parent, ast.KindLambda)
	case "expression_statement":
		return pv.handleExpressionStatement(ctx, tsNode, parent)
	case "return_statement":
		return pv.translate.HandleStatement(ctx, tsNode, parent, ast.KindReturn)
	case "raise_statement":
		return pv.translate.HandleStatement(ctx, tsNode, parent, ast.KindThrow)
	case "pass_statement", "break_statement", "continue_statement", "assert_statement",
		"delete_statement", "global_statement", "nonlocal_statement", "with_statement", "print_statement":
		return pv.translate.HandleStatement(ctx, tsNode, parent, ast.KindStatement)
	case "comment":
		return ast.InvalidNodeID
	default:
		pv.translate.TraverseChildren(ctx, tsNode, parent)
		return ast.InvalidNodeID
	}
}

func (pv *PythonVisitor) handleImport(tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	module := ""
	if m := pv.translate.TreeChildByFieldName(tsNode, "module_name"); m != nil {
		module = strings.TrimLeft(pv.translate.String(m), ".")
	}
	for _, n := range pv.translate.NamedChildren(tsNode) {
		var name, alias string
		switch n.Kind() {
		case "dotted_name":
			name = pv.translate.String(n)
		case "aliased_import":
			name = pv.translate.String(pv.translate.TreeChildByFieldName(n, "name"))
			alias = pv.translate.String(pv.translate.TreeChildByFieldName(n, "alias"))
		default:
			continue
		}
		if module != "" && name == module {
			continue
		}
		qualified := name
		if module != "" {
			qualified = module + "." + name
		}
		if alias == "" {
			alias = name[strings.LastIndexByte(name, '.')+1:]
		}
		pv.translate.Imports[alias] = qualified
	}
	return pv.translate.Add(parent, ast.KindImport, pv.translate.String(tsNode), tsNode)
}

// nameVisibility follows the underscore conventions. Dunder names are public.
func nameVisibility(name string) ast.Modifiers {
	switch {
	case strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
		return ast.ModPublic
	case strings.HasPrefix(name, "__"):
		return ast.ModPrivate
	case strings.HasPrefix(name, "_"):
		return ast.ModProtected
	default:
		return ast.ModPublic
	}
}

func (pv *PythonVisitor) handleClassDefinition(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	name := pv.translate.String(pv.translate.TreeChildByFieldName(tsNode, "name"))
	id := pv.translate.Add(parent, ast.KindClass, name, tsNode)
	pv.translate.Builder.AddModifiers(id, nameVisibility(name))
	pv.translate.RegisterClass(name, id)

	body := pv.translate.TreeChildByFieldName(tsNode, "body")
	pv.translate.PushScope()
	defer pv.translate.PopScope()
	for _, member := range pv.translate.Children(body) {
		if member.Kind() == "expression_statement" {
			if assign := pv.translate.TreeChildByKind(member, "assignment"); assign != nil {
				pv.handleClassAttribute(ctx, assign, id)
				continue
			}
		}
		pv.TraverseNode(ctx, member, id)
	}
	return id
}

// handleClassAttribute records "x = value" in a class body as a static field.
func (pv *PythonVisitor) handleClassAttribute(ctx context.Context, assign *tree_sitter.Node, cls ast.NodeID) {
	left := pv.translate.TreeChildByFieldName(assign, "left")
	if left == nil || left.Kind() != "identifier" {
		pv.translate.TraverseChildren(ctx, assign, cls)
		return
	}
	name := pv.translate.String(left)
	typ := pv.translate.String(pv.translate.TreeChildByFieldName(assign, "type"))
	id := pv.addField(cls, assign, name, typ, nameVisibility(name)|ast.ModStatic)
	pv.translate.TraverseChildren(ctx, pv.translate.TreeChildByFieldName(assign, "right"), id)
}

func (pv *PythonVisitor) addField(cls ast.NodeID, tsNode *tree_sitter.Node, name, typ string, mods ast.Modifiers) ast.NodeID {
	if pv.fields[cls] == nil {
		pv.fields[cls] = make(map[string]bool)
	}
	if pv.fields[cls][name] {
		return cls
	}
	pv.fields[cls][name] = true
	id := pv.translate.Add(cls, ast.KindField, name, tsNode)
	pv.translate.Builder.AddModifiers(id, mods)
	pv.translate.Builder.SetType(id, typ)
	return id
}

func (pv *PythonVisitor) handleDecorated(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	var mods ast.Modifiers
	for _, d := range pv.translate.TreeChildrenByKind(tsNode, "decorator") {
		text := strings.TrimPrefix(strings.TrimSpace(pv.translate.String(d)), "@")
		switch {
		case text == "staticmethod", text == "classmethod":
			mods |= ast.ModStatic
		case text == "property", strings.HasSuffix(text, ".setter"), strings.HasSuffix(text, ".getter"):
			mods |= ast.ModAccessor
		case text == "abstractmethod", strings.HasSuffix(text, ".abstractmethod"):
			mods |= ast.ModAbstract
		}
	}
	def := pv.translate.TreeChildByFieldName(tsNode, "definition")
	if def != nil && def.Kind() == "function_definition" {
		return pv.handleFunctionDefinition(ctx, def, parent, mods)
	}
	return pv.TraverseNode(ctx, def, parent)
}

func (pv *PythonVisitor) handleFunctionDefinition(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID, mods ast.Modifiers) ast.NodeID {
	name := pv.translate.String(pv.translate.TreeChildByFieldName(tsNode, "name"))
	isMember := pv.translate.Builder.Kind(parent).IsClassLike()
	kind := ast.KindMethod
	if isMember && name == "__init__" {
		kind = ast.KindConstructor
	}
	params := pv.params(pv.translate.TreeChildByFieldName(tsNode, "parameters"))

	// the receiver is bound to the class but is not a parameter
	var receiver string
	if isMember && len(params) > 0 && (mods&ast.ModStatic == 0 || params[0].Name == "cls") {
		receiver = params[0].Name
		params = params[1:]
	}

	pv.translate.PushScope()
	defer pv.translate.PopScope()
	if receiver != "" {
		pv.translate.CurrentScope.Declare(receiver, pv.translate.OwnClass(parent))
	}
	body := pv.translate.TreeChildByFieldName(tsNode, "body")
	return pv.translate.CreateOperation(ctx, parent, tsNode, kind, name, mods|nameVisibility(name), params, body)
}

func (pv *PythonVisitor) params(list *tree_sitter.Node) []Param {
	var params []Param
	for _, p := range pv.translate.NamedChildren(list) {
		var name, typ string
		switch p.Kind() {
		case "identifier":
			name = pv.translate.String(p)
		case "typed_parameter":
			name = pv.translate.String(pv.translate.TreeChildByKind(p, "identifier"))
			typ = pv.translate.String(pv.translate.TreeChildByFieldName(p, "type"))
			if splat := pv.translate.TreeChildByKind(p, "list_splat_pattern"); splat != nil {
				name, typ = pv.translate.GetTreeNodeName(splat), typ+"..."
			}
		case "default_parameter":
			name = pv.translate.String(pv.translate.TreeChildByFieldName(p, "name"))
		case "typed_default_parameter":
			name = pv.translate.String(pv.translate.TreeChildByFieldName(p, "name"))
			typ = pv.translate.String(pv.translate.TreeChildByFieldName(p, "type"))
		case "list_splat_pattern":
			name, typ = pv.translate.GetTreeNodeName(p), "?..."
		case "dictionary_splat_pattern":
			name, typ = pv.translate.GetTreeNodeName(p), "dict"
		default:
			continue
		}
		if typ == "" {
			typ = ast.UnknownType
		}
		params = append(params, Param{Name: name, Type: typ})
	}
	return params
}

// handleCaseClause treats the wildcard pattern as the default branch.
func (pv *PythonVisitor) handleCaseClause(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	kind := ast.KindCase
	if pattern := pv.translate.TreeChildByKind(tsNode, "case_pattern"); pattern != nil && strings.TrimSpace(pv.translate.String(pattern)) == "_" {
		kind = ast.KindStatement
	}
	return pv.translate.HandleStatement(ctx, tsNode, parent, kind)
}

// handleExpressionStatement drops docstrings, which are not statements.
func (pv *PythonVisitor) handleExpressionStatement(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	if tsNode.NamedChildCount() == 1 && tsNode.NamedChild(0).Kind() == "string" {
		return ast.InvalidNodeID
	}
	id := pv.translate.Add(parent, ast.KindStatement, "", tsNode)
	for _, c := range pv.translate.Children(tsNode) {
		if c.Kind() == "assignment" {
			pv.handleAssignment(ctx, c, id)
			continue
		}
		pv.TraverseNode(ctx, c, id)
	}
	return id
}

// handleAssignment binds the instantiated class to the assigned name.
// Assignments to self.x also declare field x on the enclosing class.
func (pv *PythonVisitor) handleAssignment(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) {
	left := pv.translate.TreeChildByFieldName(tsNode, "left")
	right := pv.translate.TreeChildByFieldName(tsNode, "right")
	typ := pv.translate.String(pv.translate.TreeChildByFieldName(tsNode, "type"))
	if typ == "" && right != nil && right.Kind() == "call" {
		if fn := pv.translate.TreeChildByFieldName(right, "function"); fn != nil && leadingUpper(lastSegment(pv.translate.String(fn))) {
			typ = pv.translate.String(fn)
		}
	}
	class := pv.translate.ResolveType(typ)

	switch {
	case left == nil:
	case left.Kind() == "identifier":
		pv.translate.CurrentScope.Declare(pv.translate.String(left), class)
	case left.Kind() == "attribute":
		object := pv.translate.TreeChildByFieldName(left, "object")
		attr := pv.translate.String(pv.translate.TreeChildByFieldName(left, "attribute"))
		if object == nil || object.Kind() != "identifier" {
			break
		}
		owner := pv.translate.CurrentScope.Resolve(pv.translate.String(object))
		if owner == "" || owner != pv.translate.OwnClass(parent) {
			break
		}
		if cls := pv.enclosingClass(parent); cls != ast.InvalidNodeID {
			pv.addField(cls, tsNode, attr, typ, nameVisibility(attr))
			if class != "" {
				pv.fieldTypes[owner+"."+attr] = class
			}
		}
	}
	pv.TraverseNode(ctx, right, parent)
}

func (pv *PythonVisitor) enclosingClass(id ast.NodeID) ast.NodeID {
	for cur := id; cur != ast.InvalidNodeID; cur = pv.translate.Builder.Parent(cur) {
		if pv.translate.Builder.Kind(cur).IsClassLike() {
			return cur
		}
	}
	return ast.InvalidNodeID
}

func (pv *PythonVisitor) handleCall(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	function := pv.translate.TreeChildByFieldName(tsNode, "function")
	arity := pv.translate.Arity(pv.translate.TreeChildByFieldName(tsNode, "arguments"))

	var target string
	switch {
	case function == nil:
	case function.Kind() == "identifier":
		name := pv.translate.String(function)
		if !leadingUpper(name) {
			target = FunctionTarget(pv.translate.Builder.Package(), name, arity)
		}
	case function.Kind() == "attribute":
		target = pv.attributeTarget(function, arity)
	}
	return pv.translate.HandleCall(ctx, tsNode, parent, target)
}

func (pv *PythonVisitor) attributeTarget(function *tree_sitter.Node, arity int) string {
	object := pv.translate.TreeChildByFieldName(function, "object")
	method := pv.translate.String(pv.translate.TreeChildByFieldName(function, "attribute"))
	if object == nil {
		return ""
	}
	switch object.Kind() {
	case "identifier":
		name := pv.translate.String(object)
		if class := pv.translate.CurrentScope.Resolve(name); class != "" {
			return CallTarget(class, method, arity)
		}
		if module, ok := pv.translate.Imports[name]; ok && !leadingUpper(lastSegment(module)) {
			return FunctionTarget(strings.Split(module, "."), method, arity)
		}
	case "attribute":
		// self.field.method()
		inner := pv.translate.TreeChildByFieldName(object, "object")
		if inner == nil || inner.Kind() != "identifier" {
			return ""
		}
		owner := pv.translate.CurrentScope.Resolve(pv.translate.String(inner))
		field := pv.translate.String(pv.translate.TreeChildByFieldName(object, "attribute"))
		return CallTarget(pv.fieldTypes[owner+"."+field], method, arity)
	}
	return ""
}

func lastSegment(dotted string) string {
	return dotted[strings.LastIndexByte(dotted, '.')+1:]
}
