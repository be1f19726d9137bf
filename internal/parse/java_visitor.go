package parse

import (
	"context"
	"strconv"
	"strings"

	"codemetrics/internal/ast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"go.uber.org/zap"
)

type JavaVisitor struct {
	translate   *TranslateFromSyntaxTree
	logger      *zap.Logger
	anonymous   int
	inInterface bool
}

func NewJavaVisitor(logger *zap.Logger, ts *TranslateFromSyntaxTree) *JavaVisitor {
	return &JavaVisitor{
		translate: ts,
		logger:    logger,
	}
}

func (jv *JavaVisitor) TraverseNode(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	if tsNode == nil {
		return ast.InvalidNodeID
	}

	switch tsNode.Kind() {
	case "program":
		jv.translate.TraverseChildren(ctx, tsNode, parent)
		return ast.InvalidNodeID
	case "package_declaration":
		return jv.handlePackage(tsNode, parent)
	case "import_declaration":
		return jv.handleImport(tsNode, parent)
	case "class_declaration", "record_declaration":
		return jv.handleClass(ctx, tsNode, parent, ast.KindClass)
	case "interface_declaration":
		return jv.handleClass(ctx, tsNode, parent, ast.KindInterface)
	case "enum_declaration":
		return jv.handleClass(ctx, tsNode, parent, ast.KindEnum)
	case "annotation_type_declaration":
		return jv.handleClass(ctx, tsNode, parent, ast.KindAnnotation)
	case "method_declaration":
		return jv.handleMethod(ctx, tsNode, parent, ast.KindMethod)
	case "constructor_declaration", "compact_constructor_declaration":
		return jv.handleMethod(ctx, tsNode, parent, ast.KindConstructor)
	case "field_declaration", "constant_declaration":
		jv.handleFieldDeclaration(ctx, tsNode, parent)
		return ast.InvalidNodeID
	case "enum_constant":
		return jv.handleEnumConstant(ctx, tsNode, parent)
	case "block", "constructor_body":
		return jv.translate.HandleBlock(ctx, tsNode, parent)
	case "local_variable_declaration":
		jv.handleLocalVariable(ctx, tsNode, parent)
		return ast.InvalidNodeID
	case "if_statement":
		return jv.translate.HandleStatement(ctx, tsNode, parent, ast.KindIf)
	case "for_statement", "enhanced_for_statement", "while_statement", "do_statement":
		return jv.handleLoop(ctx, tsNode, parent)
	case "switch_expression", "switch_statement":
		return jv.translate.HandleStatement(ctx, tsNode, parent, ast.KindSwitch)
	case "switch_block_statement_group", "switch_rule":
		return jv.handleSwitchCase(ctx, tsNode, parent)
	case "try_statement", "try_with_resources_statement":
		return jv.translate.HandleStatement(ctx, tsNode, parent, ast.KindTry)
	case "catch_clause":
		return jv.translate.HandleStatement(ctx, tsNode, parent, ast.KindCatch)
	case "ternary_expression":
		return jv.translate.HandleStatement(ctx, tsNode, parent, ast.KindTernary)
	case "binary_expression":
		return jv.translate.HandleBinary(ctx, tsNode, parent, "&&", "||")
	case "method_invocation":
		return jv.handleMethodInvocation(ctx, tsNode, parent)
	case "object_creation_expression":
		return jv.handleObjectCreation(ctx, tsNode, parent)
	case "lambda_expression":
		return jv.translate.HandleStatement(ctx, tsNode, parent, ast.KindLambda)
	case "return_statement":
		return jv.translate.HandleStatement(ctx, tsNode, parent, ast.KindReturn)
	case "throw_statement":
		return jv.translate.HandleStatement(ctx, tsNode, parent, ast.KindThrow)
	case "expression_statement", "break_statement", "continue_statement", "yield_statement",
		"assert_statement", "synchronized_statement", "labeled_statement", "explicit_constructor_invocation":
		return jv.translate.HandleStatement(ctx, tsNode, parent, ast.KindStatement)
	case "line_comment", "block_comment":
		return ast.InvalidNodeID
	default:
		jv.translate.TraverseChildren(ctx, tsNode, parent)
		return ast.InvalidNodeID
	}
}

func (jv *JavaVisitor) handlePackage(tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	nameNode := jv.translate.TreeChildByKind(tsNode, "scoped_identifier")
	if nameNode == nil {
		nameNode = jv.translate.TreeChildByKind(tsNode, "identifier")
	}
	name := jv.translate.String(nameNode)
	jv.translate.Builder.SetPackage(name)
	return jv.translate.Add(parent, ast.KindPackage, name, tsNode)
}

func (jv *JavaVisitor) handleImport(tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	nameNode := jv.translate.TreeChildByKind(tsNode, "scoped_identifier")
	if nameNode == nil {
		nameNode = jv.translate.TreeChildByKind(tsNode, "identifier")
	}
	name := jv.translate.String(nameNode)
	wildcard := jv.translate.TreeChildByKind(tsNode, "asterisk") != nil
	if !wildcard && !jv.translate.HasToken(tsNode, "static") {
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			jv.translate.Imports[name[i+1:]] = name
		}
	}
	return jv.translate.Add(parent, ast.KindImport, name, tsNode)
}

func (jv *JavaVisitor) modifiers(tsNode *tree_sitter.Node) ast.Modifiers {
	modsNode := jv.translate.TreeChildByKind(tsNode, "modifiers")
	var mods ast.Modifiers
	for token, m := range map[string]ast.Modifiers{
		"public":    ast.ModPublic,
		"private":   ast.ModPrivate,
		"protected": ast.ModProtected,
		"static":    ast.ModStatic,
		"final":     ast.ModFinal,
		"abstract":  ast.ModAbstract,
	} {
		if modsNode != nil && jv.translate.HasToken(modsNode, token) {
			mods |= m
		}
	}
	return mods
}

func (jv *JavaVisitor) handleClass(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID, kind ast.Kind) ast.NodeID {
	name := jv.translate.GetTreeNodeName(tsNode)
	id := jv.translate.Add(parent, kind, name, tsNode)
	mods := jv.modifiers(tsNode)
	if jv.inInterface {
		mods |= ast.ModPublic | ast.ModStatic
	}
	jv.translate.Builder.AddModifiers(id, mods)
	jv.translate.RegisterClass(name, id)
	jv.traverseBody(ctx, jv.translate.TreeChildByFieldName(tsNode, "body"), id, kind == ast.KindInterface || kind == ast.KindAnnotation)
	return id
}

// traverseBody translates the members of a class body in a fresh scope,
// so fields shadow outer variables.
func (jv *JavaVisitor) traverseBody(ctx context.Context, body *tree_sitter.Node, cls ast.NodeID, isInterface bool) {
	if body == nil {
		return
	}
	jv.translate.PushScope()
	defer jv.translate.PopScope()
	saved := jv.inInterface
	jv.inInterface = isInterface
	defer func() { jv.inInterface = saved }()

	// fields first, so that methods resolve them regardless of order
	for _, member := range jv.translate.Children(body) {
		if member.Kind() == "field_declaration" || member.Kind() == "constant_declaration" {
			jv.TraverseNode(ctx, member, cls)
		}
	}
	for _, member := range jv.translate.Children(body) {
		if member.Kind() != "field_declaration" && member.Kind() != "constant_declaration" {
			jv.TraverseNode(ctx, member, cls)
		}
	}
}

func (jv *JavaVisitor) handleMethod(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID, kind ast.Kind) ast.NodeID {
	name := jv.translate.GetTreeNodeName(tsNode)
	body := jv.translate.TreeChildByFieldName(tsNode, "body")
	mods := jv.modifiers(tsNode)
	if jv.inInterface {
		mods |= ast.ModPublic
		if body == nil && mods&ast.ModStatic == 0 {
			mods |= ast.ModAbstract
		}
	}
	params := jv.params(jv.translate.TreeChildByFieldName(tsNode, "parameters"))
	return jv.translate.CreateOperation(ctx, parent, tsNode, kind, name, mods, params, body)
}

func (jv *JavaVisitor) params(list *tree_sitter.Node) []Param {
	var params []Param
	for _, p := range jv.translate.NamedChildren(list) {
		switch p.Kind() {
		case "formal_parameter":
			typ := jv.translate.String(jv.translate.TreeChildByFieldName(p, "type"))
			typ += jv.translate.String(jv.translate.TreeChildByFieldName(p, "dimensions"))
			params = append(params, Param{
				Name: jv.translate.String(jv.translate.TreeChildByFieldName(p, "name")),
				Type: typ,
			})
		case "spread_parameter":
			var typ, name string
			for _, c := range jv.translate.NamedChildren(p) {
				switch c.Kind() {
				case "modifiers":
				case "variable_declarator":
					name = jv.translate.GetTreeNodeName(c)
				default:
					if typ == "" {
						typ = jv.translate.String(c)
					}
				}
			}
			params = append(params, Param{Name: name, Type: typ + "..."})
		}
	}
	return params
}

func (jv *JavaVisitor) handleFieldDeclaration(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) {
	typ := jv.translate.String(jv.translate.TreeChildByFieldName(tsNode, "type"))
	mods := jv.modifiers(tsNode)
	if jv.inInterface {
		mods |= ast.ModPublic | ast.ModStatic | ast.ModFinal
	}
	for _, decl := range jv.translate.TreeChildrenByKind(tsNode, "variable_declarator") {
		id := jv.translate.AddField(parent, decl, jv.translate.GetTreeNodeName(decl), typ, mods)
		jv.translate.TraverseChildren(ctx, jv.translate.TreeChildByFieldName(decl, "value"), id)
	}
}

func (jv *JavaVisitor) handleEnumConstant(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	id := jv.translate.AddField(parent, tsNode, jv.translate.GetTreeNodeName(tsNode), "",
		ast.ModPublic|ast.ModStatic|ast.ModFinal)
	if body := jv.translate.TreeChildByFieldName(tsNode, "body"); body != nil {
		jv.anonymous++
		cls := jv.translate.Add(id, ast.KindClass, strconv.Itoa(jv.anonymous), body)
		jv.traverseBody(ctx, body, cls, false)
	}
	return id
}

func (jv *JavaVisitor) handleLocalVariable(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) {
	typ := jv.translate.String(jv.translate.TreeChildByFieldName(tsNode, "type"))
	for _, decl := range jv.translate.TreeChildrenByKind(tsNode, "variable_declarator") {
		name := jv.translate.GetTreeNodeName(decl)
		value := jv.translate.TreeChildByFieldName(decl, "value")
		declType := typ
		if declType == "var" && value != nil && value.Kind() == "object_creation_expression" {
			declType = jv.translate.String(jv.translate.TreeChildByFieldName(value, "type"))
		}
		id := jv.translate.Add(parent, ast.KindLocalVariable, name, decl)
		jv.translate.Builder.SetType(id, declType)
		jv.translate.CurrentScope.Declare(name, jv.translate.ResolveType(declType))
		if value != nil {
			jv.TraverseNode(ctx, value, id)
		}
	}
}

func (jv *JavaVisitor) handleLoop(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	id := jv.translate.Add(parent, ast.KindLoop, "", tsNode)
	jv.translate.PushScope()
	defer jv.translate.PopScope()
	if tsNode.Kind() == "enhanced_for_statement" {
		name := jv.translate.String(jv.translate.TreeChildByFieldName(tsNode, "name"))
		typ := jv.translate.String(jv.translate.TreeChildByFieldName(tsNode, "type"))
		jv.translate.CurrentScope.Declare(name, jv.translate.ResolveType(typ))
	}
	jv.translate.TraverseChildren(ctx, tsNode, id)
	return id
}

// handleSwitchCase adds a decision point for every labelled case. The
// default branch only adds a statement.
func (jv *JavaVisitor) handleSwitchCase(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	kind := ast.KindCase
	if label := jv.translate.TreeChildByKind(tsNode, "switch_label"); label != nil &&
		strings.HasPrefix(strings.TrimSpace(jv.translate.String(label)), "default") {
		kind = ast.KindStatement
	}
	return jv.translate.HandleStatement(ctx, tsNode, parent, kind)
}

func (jv *JavaVisitor) handleMethodInvocation(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	name := jv.translate.String(jv.translate.TreeChildByFieldName(tsNode, "name"))
	arity := jv.translate.Arity(jv.translate.TreeChildByFieldName(tsNode, "arguments"))

	var class string
	switch object := jv.translate.TreeChildByFieldName(tsNode, "object"); {
	case object == nil, object.Kind() == "this":
		class = jv.translate.OwnClass(parent)
	case object.Kind() == "identifier":
		obj := jv.translate.String(object)
		if class = jv.translate.CurrentScope.Resolve(obj); class == "" && leadingUpper(obj) {
			// static call on a class name
			class = jv.translate.ResolveType(obj)
		}
	case object.Kind() == "field_access":
		if this := jv.translate.TreeChildByFieldName(object, "object"); this != nil && this.Kind() == "this" {
			field := jv.translate.String(jv.translate.TreeChildByFieldName(object, "field"))
			class = jv.translate.CurrentScope.Resolve(field)
		}
	}
	return jv.translate.HandleCall(ctx, tsNode, parent, CallTarget(class, name, arity))
}

// handleObjectCreation translates arguments and the body of anonymous
// classes, which are numbered in source order.
func (jv *JavaVisitor) handleObjectCreation(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	jv.translate.TraverseChildren(ctx, jv.translate.TreeChildByFieldName(tsNode, "arguments"), parent)
	body := jv.translate.TreeChildByKind(tsNode, "class_body")
	if body == nil {
		return ast.InvalidNodeID
	}
	jv.anonymous++
	id := jv.translate.Add(parent, ast.KindClass, strconv.Itoa(jv.anonymous), body)
	jv.traverseBody(ctx, body, id, false)
	return id
}
