package parse

import (
	"context"
	"strings"

	"codemetrics/internal/ast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"go.uber.org/zap"
)

type GoVisitor struct {
	translate *TranslateFromSyntaxTree
	logger    *zap.Logger
	// module is the Go module path, stripped from import paths so that
	// imports line up with directory based package names.
	module string
}

func NewGoVisitor(logger *zap.Logger, ts *TranslateFromSyntaxTree, module string) *GoVisitor {
	return &GoVisitor{
		translate: ts,
		logger:    logger,
		module:    module,
	}
}

func (gv *GoVisitor) TraverseNode(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	if tsNode == nil {
		return ast.InvalidNodeID
	}

	switch tsNode.Kind() {
	case "source_file":
		return gv.handleSourceFile(ctx, tsNode, parent)
	case "import_spec":
		return gv.handleImportSpec(tsNode, parent)
	case "type_declaration":
		gv.handleTypeDeclaration(ctx, tsNode, parent)
		return ast.InvalidNodeID
	case "function_declaration":
		return gv.handleFunctionDeclaration(ctx, tsNode, parent)
	case "method_declaration":
		return gv.handleMethodDeclaration(ctx, tsNode, parent)
	case "block":
		return gv.translate.HandleBlock(ctx, tsNode, parent)
	case "if_statement":
		return gv.handleScoped(ctx, tsNode, parent, ast.KindIf)
	case "for_statement":
		return gv.handleScoped(ctx, tsNode, parent, ast.KindLoop)
	case "expression_switch_statement", "type_switch_statement", "select_statement":
		return gv.handleScoped(ctx, tsNode, parent, ast.KindSwitch)
	case "expression_case", "type_case", "communication_case":
		return gv.translate.HandleStatement(ctx, tsNode, parent, ast.KindCase)
	case "default_case":
		return gv.translate.HandleStatement(ctx, tsNode, parent, ast.KindStatement)
	case "binary_expression":
		return gv.translate.HandleBinary(ctx, tsNode, parent, "&&", "||")
	case "call_expression":
		return gv.handleCallExpression(ctx, tsNode, parent)
	case "func_literal":
		return gv.handleFuncLiteral(ctx, tsNode, parent)
	case "short_var_declaration":
		return gv.handleShortVarDeclaration(ctx, tsNode, parent)
	case "var_declaration", "const_declaration":
		if gv.inFunction(parent) {
			return gv.handleVarDeclaration(ctx, tsNode, parent)
		}
		gv.translate.TraverseChildren(ctx, tsNode, parent)
		return ast.InvalidNodeID
	case "return_statement":
		return gv.translate.HandleStatement(ctx, tsNode, parent, ast.KindReturn)
	case "expression_statement", "assignment_statement", "inc_statement", "dec_statement",
		"send_statement", "labeled_statement", "go_statement", "defer_statement",
		"break_statement", "continue_statement", "goto_statement", "fallthrough_statement":
		return gv.translate.HandleStatement(ctx, tsNode, parent, ast.KindStatement)
	case "comment":
		return ast.InvalidNodeID
	default:
		gv.translate.TraverseChildren(ctx, tsNode, parent)
		return ast.InvalidNodeID
	}
}

// handleSourceFile translates type declarations before everything else so
// that methods find their receiver type regardless of declaration order.
func (gv *GoVisitor) handleSourceFile(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	if clause := gv.translate.TreeChildByKind(tsNode, "package_clause"); clause != nil {
		name := gv.translate.String(gv.translate.TreeChildByKind(clause, "package_identifier"))
		if len(gv.translate.Builder.Package()) == 0 {
			gv.translate.Builder.SetPackage(name)
		}
		gv.translate.Add(parent, ast.KindPackage, name, clause)
	}
	children := gv.translate.Children(tsNode)
	for _, c := range children {
		if c.Kind() == "type_declaration" {
			gv.TraverseNode(ctx, c, parent)
		}
	}
	for _, c := range children {
		if c.Kind() != "type_declaration" && c.Kind() != "package_clause" {
			gv.TraverseNode(ctx, c, parent)
		}
	}
	return ast.InvalidNodeID
}

func (gv *GoVisitor) handleImportSpec(tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	path := strings.Trim(gv.translate.String(gv.translate.TreeChildByFieldName(tsNode, "path")), "\"`")
	alias := gv.translate.String(gv.translate.TreeChildByFieldName(tsNode, "name"))
	if alias == "" {
		alias = path[strings.LastIndexByte(path, '/')+1:]
	}
	if alias != "_" && alias != "." {
		gv.translate.Imports[alias] = gv.importedPackage(path)
	}
	return gv.translate.Add(parent, ast.KindImport, path, tsNode)
}

// importedPackage turns an import path into dotted package segments, relative
// to the module when the path belongs to it.
func (gv *GoVisitor) importedPackage(path string) string {
	if gv.module != "" {
		if rest, ok := strings.CutPrefix(path, gv.module+"/"); ok {
			path = rest
		}
	}
	return strings.ReplaceAll(path, "/", ".")
}

func visibility(name string) ast.Modifiers {
	if leadingUpper(name) {
		return ast.ModPublic
	}
	return 0
}

func (gv *GoVisitor) handleTypeDeclaration(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) {
	for _, spec := range gv.translate.TreeChildrenByKind(tsNode, "type_spec", "type_alias") {
		name := gv.translate.String(gv.translate.TreeChildByFieldName(spec, "name"))
		typ := gv.translate.TreeChildByFieldName(spec, "type")
		kind := ast.KindClass
		if typ != nil && typ.Kind() == "interface_type" {
			kind = ast.KindInterface
		}
		id := gv.translate.Add(parent, kind, name, spec)
		gv.translate.Builder.AddModifiers(id, visibility(name))
		gv.translate.RegisterClass(name, id)

		switch kind {
		case ast.KindInterface:
			for _, elem := range gv.translate.TreeChildrenByKind(typ, "method_elem", "method_spec") {
				elemName := gv.translate.String(gv.translate.TreeChildByFieldName(elem, "name"))
				params := gv.params(gv.translate.TreeChildByFieldName(elem, "parameters"))
				gv.translate.CreateOperation(ctx, id, elem, ast.KindMethod, elemName,
					visibility(elemName)|ast.ModAbstract, params, nil)
			}
		default:
			if typ != nil && typ.Kind() == "struct_type" {
				gv.handleStructFields(ctx, typ, id)
			}
		}
	}
}

func (gv *GoVisitor) handleStructFields(ctx context.Context, structType *tree_sitter.Node, cls ast.NodeID) {
	list := gv.translate.TreeChildByKind(structType, "field_declaration_list")
	for _, decl := range gv.translate.TreeChildrenByKind(list, "field_declaration") {
		typ := gv.translate.String(gv.translate.TreeChildByFieldName(decl, "type"))
		names := gv.translate.TreeChildrenByKind(decl, "field_identifier")
		if len(names) == 0 {
			// embedded field, named after its type
			embedded := ast.NormalizeType(typ)
			gv.translate.AddField(cls, decl, embedded, typ, visibility(embedded))
			continue
		}
		for _, n := range names {
			name := gv.translate.String(n)
			gv.translate.AddField(cls, decl, name, typ, visibility(name))
		}
	}
}

func (gv *GoVisitor) params(list *tree_sitter.Node) []Param {
	var params []Param
	for _, decl := range gv.translate.TreeChildrenByKind(list, "parameter_declaration", "variadic_parameter_declaration") {
		typ := gv.translate.String(gv.translate.TreeChildByFieldName(decl, "type"))
		if decl.Kind() == "variadic_parameter_declaration" {
			typ = "[]" + typ
		}
		names := gv.translate.TreeChildrenByKind(decl, "identifier")
		if len(names) == 0 {
			params = append(params, Param{Type: typ})
			continue
		}
		for _, n := range names {
			params = append(params, Param{Name: gv.translate.String(n), Type: typ})
		}
	}
	return params
}

func (gv *GoVisitor) handleFunctionDeclaration(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	name := gv.translate.String(gv.translate.TreeChildByFieldName(tsNode, "name"))
	params := gv.params(gv.translate.TreeChildByFieldName(tsNode, "parameters"))
	body := gv.translate.TreeChildByFieldName(tsNode, "body")
	return gv.translate.CreateOperation(ctx, parent, tsNode, ast.KindMethod, name, visibility(name), params, body)
}

// handleMethodDeclaration attaches the method to its receiver type. When the
// type is declared in another file of the package, a synthetic class stands
// in for it.
func (gv *GoVisitor) handleMethodDeclaration(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	name := gv.translate.String(gv.translate.TreeChildByFieldName(tsNode, "name"))
	receiver := gv.translate.TreeChildByFieldName(tsNode, "receiver")
	recvDecl := gv.translate.TreeChildByKind(receiver, "parameter_declaration")
	if recvDecl == nil {
		gv.logger.Warn("method_declaration without receiver", zap.String("method", name))
		return ast.InvalidNodeID
	}
	className := receiverTypeName(gv.translate.String(gv.translate.TreeChildByFieldName(recvDecl, "type")))

	cls, ok := gv.translate.Classes[className]
	if !ok {
		cls = gv.translate.Builder.Add(parent, ast.KindClass, className)
		gv.translate.Builder.AddModifiers(cls, visibility(className)|ast.ModSynthetic)
		gv.translate.RegisterClass(className, cls)
	}

	gv.translate.PushScope()
	defer gv.translate.PopScope()
	if recvName := gv.translate.TreeChildByKind(recvDecl, "identifier"); recvName != nil {
		gv.translate.CurrentScope.Declare(gv.translate.String(recvName), gv.translate.Builder.ClassQualifiedName(cls).ClassString())
	}
	params := gv.params(gv.translate.TreeChildByFieldName(tsNode, "parameters"))
	body := gv.translate.TreeChildByFieldName(tsNode, "body")
	return gv.translate.CreateOperation(ctx, cls, tsNode, ast.KindMethod, name, visibility(name), params, body)
}

// receiverTypeName strips pointers and type arguments: "*List[T]" is "List".
func receiverTypeName(typ string) string {
	typ = strings.TrimLeft(strings.TrimSpace(typ), "*")
	if i := strings.IndexByte(typ, '['); i >= 0 {
		typ = typ[:i]
	}
	return typ
}

func (gv *GoVisitor) handleScoped(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID, kind ast.Kind) ast.NodeID {
	gv.translate.PushScope()
	defer gv.translate.PopScope()
	return gv.translate.HandleStatement(ctx, tsNode, parent, kind)
}

func (gv *GoVisitor) handleCallExpression(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	function := gv.translate.TreeChildByFieldName(tsNode, "function")
	arity := gv.translate.Arity(gv.translate.TreeChildByFieldName(tsNode, "arguments"))

	var target string
	switch {
	case function == nil:
	case function.Kind() == "identifier":
		target = FunctionTarget(gv.translate.Builder.Package(), gv.translate.String(function), arity)
	case function.Kind() == "selector_expression":
		operand := gv.translate.TreeChildByFieldName(function, "operand")
		field := gv.translate.String(gv.translate.TreeChildByFieldName(function, "field"))
		if operand == nil || operand.Kind() != "identifier" {
			break
		}
		name := gv.translate.String(operand)
		if class := gv.translate.CurrentScope.Resolve(name); class != "" {
			target = CallTarget(class, field, arity)
		} else if pkg, ok := gv.translate.Imports[name]; ok {
			target = FunctionTarget(strings.Split(pkg, "."), field, arity)
		}
	}
	return gv.translate.HandleCall(ctx, tsNode, parent, target)
}

func (gv *GoVisitor) handleFuncLiteral(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	id := gv.translate.Add(parent, ast.KindLambda, "", tsNode)
	gv.translate.PushScope()
	defer gv.translate.PopScope()
	for _, p := range gv.params(gv.translate.TreeChildByFieldName(tsNode, "parameters")) {
		gv.translate.CurrentScope.Declare(p.Name, gv.translate.ResolveType(p.Type))
	}
	gv.TraverseNode(ctx, gv.translate.TreeChildByFieldName(tsNode, "body"), id)
	return id
}

func (gv *GoVisitor) handleShortVarDeclaration(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	id := gv.translate.Add(parent, ast.KindLocalVariable, "", tsNode)
	left := gv.translate.NamedChildren(gv.translate.TreeChildByFieldName(tsNode, "left"))
	right := gv.translate.NamedChildren(gv.translate.TreeChildByFieldName(tsNode, "right"))
	for i, l := range left {
		typ := ""
		if len(left) == len(right) {
			typ = gv.literalType(right[i])
		}
		gv.translate.CurrentScope.Declare(gv.translate.String(l), gv.translate.ResolveType(typ))
	}
	if len(left) > 0 {
		gv.translate.Builder.SetName(id, gv.translate.String(left[0]))
	}
	gv.translate.TraverseChildren(ctx, gv.translate.TreeChildByFieldName(tsNode, "right"), id)
	return id
}

// literalType returns the type of T{} and &T{} expressions.
func (gv *GoVisitor) literalType(expr *tree_sitter.Node) string {
	if expr.Kind() == "unary_expression" {
		expr = gv.translate.TreeChildByFieldName(expr, "operand")
	}
	if expr == nil || expr.Kind() != "composite_literal" {
		return ""
	}
	return gv.translate.String(gv.translate.TreeChildByFieldName(expr, "type"))
}

func (gv *GoVisitor) handleVarDeclaration(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	last := ast.InvalidNodeID
	specs := gv.translate.TreeChildrenByKind(tsNode, "var_spec", "const_spec")
	if list := gv.translate.TreeChildByKind(tsNode, "var_spec_list"); list != nil {
		specs = append(specs, gv.translate.TreeChildrenByKind(list, "var_spec")...)
	}
	for _, spec := range specs {
		typ := gv.translate.String(gv.translate.TreeChildByFieldName(spec, "type"))
		for _, n := range gv.translate.TreeChildrenByKind(spec, "identifier") {
			name := gv.translate.String(n)
			last = gv.translate.Add(parent, ast.KindLocalVariable, name, spec)
			gv.translate.Builder.SetType(last, typ)
			gv.translate.CurrentScope.Declare(name, gv.translate.ResolveType(typ))
		}
		if last != ast.InvalidNodeID {
			gv.translate.TraverseChildren(ctx, gv.translate.TreeChildByFieldName(spec, "value"), last)
		}
	}
	return last
}

func (gv *GoVisitor) inFunction(id ast.NodeID) bool {
	for cur := id; cur != ast.InvalidNodeID; cur = gv.translate.Builder.Parent(cur) {
		if gv.translate.Builder.Kind(cur).IsOperationLike() {
			return true
		}
	}
	return false
}
