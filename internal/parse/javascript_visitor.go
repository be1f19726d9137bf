package parse

import (
	"context"
	"path"
	"strings"

	"codemetrics/internal/ast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"go.uber.org/zap"
)

// JavaScriptVisitor translates JavaScript and TypeScript. The TypeScript
// grammar extends the JavaScript one; the additional nodes only add types,
// visibility and interfaces.
type JavaScriptVisitor struct {
	translate *TranslateFromSyntaxTree
	logger    *zap.Logger
	// dir is the slash separated directory of the file, used to resolve
	// relative imports.
	dir string
}

func NewJavaScriptVisitor(logger *zap.Logger, ts *TranslateFromSyntaxTree, dir string) *JavaScriptVisitor {
	return &JavaScriptVisitor{
		translate: ts,
		logger:    logger,
		dir:       dir,
	}
}

func (jsv *JavaScriptVisitor) TraverseNode(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	if tsNode == nil {
		return ast.InvalidNodeID
	}

	switch tsNode.Kind() {
	case "program", "export_statement":
		jsv.translate.TraverseChildren(ctx, tsNode, parent)
		return ast.InvalidNodeID
	case "import_statement":
		return jsv.handleImportStatement(tsNode, parent)
	case "class_declaration", "class", "abstract_class_declaration":
		return jsv.handleClass(ctx, tsNode, parent, ast.KindClass)
	case "interface_declaration":
		return jsv.handleClass(ctx, tsNode, parent, ast.KindInterface)
	case "enum_declaration":
		return jsv.handleEnum(tsNode, parent)
	case "method_definition", "method_signature", "abstract_method_signature":
		return jsv.handleMethodDefinition(ctx, tsNode, parent)
	case "field_definition", "public_field_definition", "property_signature":
		return jsv.handleFieldDefinition(ctx, tsNode, parent)
	case "function_declaration", "generator_function_declaration":
		return jsv.handleFunction(ctx, tsNode, parent, jsv.translate.GetTreeNodeName(tsNode))
	case "arrow_function", "function_expression", "function", "generator_function":
		return jsv.handleLambda(ctx, tsNode, parent)
	case "lexical_declaration", "variable_declaration":
		jsv.handleVariableDeclaration(ctx, tsNode, parent)
		return ast.InvalidNodeID
	case "statement_block":
		return jsv.translate.HandleBlock(ctx, tsNode, parent)
	case "if_statement":
		return jsv.translate.HandleStatement(ctx, tsNode, parent, ast.KindIf)
	case "for_statement", "for_in_statement", "for_of_statement", "while_statement", "do_statement":
		return jsv.handleLoop(ctx, tsNode, parent)
	case "switch_statement":
		return jsv.translate.HandleStatement(ctx, tsNode, parent, ast.KindSwitch)
	case "switch_case":
		return jsv.translate.HandleStatement(ctx, tsNode, parent, ast.KindCase)
	case "switch_default":
		return jsv.translate.HandleStatement(ctx, tsNode, parent, ast.KindStatement)
	case "try_statement":
		return jsv.translate.HandleStatement(ctx, tsNode, parent, ast.KindTry)
	case "catch_clause":
		return jsv.translate.HandleStatement(ctx, tsNode, parent, ast.KindCatch)
	case "ternary_expression":
		return jsv.translate.HandleStatement(ctx, tsNode, parent, ast.KindTernary)
	case "binary_expression":
		return jsv.translate.HandleBinary(ctx, tsNode, parent, "&&", "||", "??")
	case "call_expression":
		return jsv.handleCallExpression(ctx, tsNode, parent)
	case "return_statement":
		return jsv.translate.HandleStatement(ctx, tsNode, parent, ast.KindReturn)
	case "throw_statement":
		return jsv.translate.HandleStatement(ctx, tsNode, parent, ast.KindThrow)
	case "expression_statement", "break_statement", "continue_statement", "labeled_statement", "debugger_statement":
		return jsv.translate.HandleStatement(ctx, tsNode, parent, ast.KindStatement)
	case "comment":
		return ast.InvalidNodeID
	default:
		jsv.translate.TraverseChildren(ctx, tsNode, parent)
		return ast.InvalidNodeID
	}
}

// modulePath turns an import source into dotted package segments. Relative
// sources are resolved against the directory of the file.
func (jsv *JavaScriptVisitor) modulePath(source string) string {
	source = strings.Trim(source, "\"'`")
	if strings.HasPrefix(source, ".") {
		source = path.Join(jsv.dir, source)
	}
	source = strings.TrimSuffix(source, path.Ext(source))
	return strings.Trim(strings.ReplaceAll(source, "/", "."), ".")
}

func (jsv *JavaScriptVisitor) handleImportStatement(tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	source := jsv.translate.String(jsv.translate.TreeChildByFieldName(tsNode, "source"))
	module := jsv.modulePath(source)
	clause := jsv.translate.TreeChildByKind(tsNode, "import_clause")
	for _, c := range jsv.translate.NamedChildren(clause) {
		switch c.Kind() {
		case "identifier":
			// default import, assumed to be named after the exported class
			name := jsv.translate.String(c)
			jsv.translate.Imports[name] = module + "." + name
		case "namespace_import":
			jsv.translate.Imports[jsv.translate.GetTreeNodeName(c)] = module
		case "named_imports":
			for _, spec := range jsv.translate.TreeChildrenByKind(c, "import_specifier") {
				name := jsv.translate.String(jsv.translate.TreeChildByFieldName(spec, "name"))
				alias := jsv.translate.String(jsv.translate.TreeChildByFieldName(spec, "alias"))
				if alias == "" {
					alias = name
				}
				jsv.translate.Imports[alias] = module + "." + name
			}
		}
	}
	return jsv.translate.Add(parent, ast.KindImport, strings.Trim(source, "\"'`"), tsNode)
}

func (jsv *JavaScriptVisitor) modifiers(tsNode *tree_sitter.Node, name string) ast.Modifiers {
	var mods ast.Modifiers
	if acc := jsv.translate.TreeChildByKind(tsNode, "accessibility_modifier"); acc != nil {
		switch jsv.translate.String(acc) {
		case "private":
			mods |= ast.ModPrivate
		case "protected":
			mods |= ast.ModProtected
		default:
			mods |= ast.ModPublic
		}
	} else if strings.HasPrefix(name, "#") {
		mods |= ast.ModPrivate
	} else {
		mods |= ast.ModPublic
	}
	if jsv.translate.HasToken(tsNode, "static") {
		mods |= ast.ModStatic
	}
	if jsv.translate.HasToken(tsNode, "readonly") {
		mods |= ast.ModFinal
	}
	if jsv.translate.HasToken(tsNode, "abstract") || tsNode.Kind() == "abstract_method_signature" {
		mods |= ast.ModAbstract
	}
	return mods
}

func (jsv *JavaScriptVisitor) handleClass(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID, kind ast.Kind) ast.NodeID {
	name := jsv.translate.GetTreeNodeName(tsNode)
	id := jsv.translate.Add(parent, kind, name, tsNode)
	mods := ast.ModPublic
	if jsv.translate.HasToken(tsNode, "abstract") || tsNode.Kind() == "abstract_class_declaration" {
		mods |= ast.ModAbstract
	}
	jsv.translate.Builder.AddModifiers(id, mods)
	jsv.translate.RegisterClass(name, id)

	body := jsv.translate.TreeChildByFieldName(tsNode, "body")
	jsv.translate.PushScope()
	defer jsv.translate.PopScope()
	members := jsv.translate.Children(body)
	for _, m := range members {
		if isFieldKind(m.Kind()) {
			jsv.TraverseNode(ctx, m, id)
		}
	}
	for _, m := range members {
		if !isFieldKind(m.Kind()) {
			jsv.TraverseNode(ctx, m, id)
		}
	}
	return id
}

func isFieldKind(kind string) bool {
	return kind == "field_definition" || kind == "public_field_definition" || kind == "property_signature"
}

func (jsv *JavaScriptVisitor) handleEnum(tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	name := jsv.translate.GetTreeNodeName(tsNode)
	id := jsv.translate.Add(parent, ast.KindEnum, name, tsNode)
	jsv.translate.Builder.AddModifiers(id, ast.ModPublic)
	jsv.translate.RegisterClass(name, id)
	body := jsv.translate.TreeChildByFieldName(tsNode, "body")
	for _, m := range jsv.translate.NamedChildren(body) {
		constName := jsv.translate.GetTreeNodeName(m)
		if m.Kind() == "property_identifier" {
			constName = jsv.translate.String(m)
		}
		if constName != "" {
			fid := jsv.translate.Add(id, ast.KindField, constName, m)
			jsv.translate.Builder.AddModifiers(fid, ast.ModPublic|ast.ModStatic|ast.ModFinal)
		}
	}
	return id
}

func memberName(translate *TranslateFromSyntaxTree, tsNode *tree_sitter.Node) string {
	if n := translate.TreeChildByFieldName(tsNode, "name"); n != nil {
		return translate.String(n)
	}
	return translate.String(translate.TreeChildByFieldName(tsNode, "property"))
}

func (jsv *JavaScriptVisitor) handleMethodDefinition(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	name := memberName(jsv.translate, tsNode)
	mods := jsv.modifiers(tsNode, name)
	if jsv.translate.HasToken(tsNode, "get") || jsv.translate.HasToken(tsNode, "set") {
		mods |= ast.ModAccessor
	}
	kind := ast.KindMethod
	if name == "constructor" {
		kind = ast.KindConstructor
	}
	body := jsv.translate.TreeChildByFieldName(tsNode, "body")
	if body == nil && jsv.translate.Builder.Kind(parent) == ast.KindInterface {
		mods |= ast.ModAbstract
	}
	params := jsv.params(jsv.translate.TreeChildByFieldName(tsNode, "parameters"))
	return jsv.translate.CreateOperation(ctx, parent, tsNode, kind, name, mods, params, body)
}

func (jsv *JavaScriptVisitor) handleFieldDefinition(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	name := memberName(jsv.translate, tsNode)
	value := jsv.translate.TreeChildByFieldName(tsNode, "value")
	typ := typeAnnotation(jsv.translate, jsv.translate.TreeChildByFieldName(tsNode, "type"))
	if typ == "" {
		typ = jsv.newType(value)
	}
	id := jsv.translate.AddField(parent, tsNode, name, typ, jsv.modifiers(tsNode, name))
	jsv.TraverseNode(ctx, value, id)
	return id
}

// typeAnnotation strips the leading colon of a type annotation.
func typeAnnotation(translate *TranslateFromSyntaxTree, annotation *tree_sitter.Node) string {
	return strings.TrimSpace(strings.TrimPrefix(translate.String(annotation), ":"))
}

// newType returns the constructor name of a new expression.
func (jsv *JavaScriptVisitor) newType(value *tree_sitter.Node) string {
	if value == nil || value.Kind() != "new_expression" {
		return ""
	}
	return jsv.translate.String(jsv.translate.TreeChildByFieldName(value, "constructor"))
}

func (jsv *JavaScriptVisitor) params(list *tree_sitter.Node) []Param {
	var params []Param
	for _, p := range jsv.translate.NamedChildren(list) {
		var name, typ string
		switch p.Kind() {
		case "identifier":
			name = jsv.translate.String(p)
		case "required_parameter", "optional_parameter":
			pattern := jsv.translate.TreeChildByFieldName(p, "pattern")
			name = jsv.translate.String(pattern)
			typ = typeAnnotation(jsv.translate, jsv.translate.TreeChildByFieldName(p, "type"))
			if pattern != nil && pattern.Kind() == "rest_pattern" {
				name = jsv.translate.GetTreeNodeName(pattern)
				typ = strings.TrimSuffix(typ, "[]") + "..."
			}
		case "assignment_pattern":
			name = jsv.translate.String(jsv.translate.TreeChildByFieldName(p, "left"))
		case "rest_pattern":
			name, typ = jsv.translate.GetTreeNodeName(p), "?..."
		case "object_pattern", "array_pattern":
			name = jsv.translate.String(p)
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

func (jsv *JavaScriptVisitor) handleFunction(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID, name string) ast.NodeID {
	params := jsv.params(jsv.translate.TreeChildByFieldName(tsNode, "parameters"))
	if p := jsv.translate.TreeChildByFieldName(tsNode, "parameter"); p != nil {
		// single parameter arrow function: x => ...
		params = []Param{{Name: jsv.translate.String(p), Type: ast.UnknownType}}
	}
	body := jsv.translate.TreeChildByFieldName(tsNode, "body")
	return jsv.translate.CreateOperation(ctx, parent, tsNode, ast.KindMethod, name, ast.ModPublic, params, body)
}

func (jsv *JavaScriptVisitor) handleLambda(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	id := jsv.translate.Add(parent, ast.KindLambda, "", tsNode)
	jsv.translate.PushScope()
	defer jsv.translate.PopScope()
	for _, p := range jsv.params(jsv.translate.TreeChildByFieldName(tsNode, "parameters")) {
		jsv.translate.CurrentScope.Declare(p.Name, jsv.translate.ResolveType(p.Type))
	}
	jsv.TraverseNode(ctx, jsv.translate.TreeChildByFieldName(tsNode, "body"), id)
	return id
}

// handleVariableDeclaration turns top-level "const f = () => {}" into a
// function named f. Other declarators become local variables inside
// operations.
func (jsv *JavaScriptVisitor) handleVariableDeclaration(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) {
	topLevel := parent == jsv.translate.Builder.Root()
	for _, decl := range jsv.translate.TreeChildrenByKind(tsNode, "variable_declarator") {
		name := jsv.translate.String(jsv.translate.TreeChildByFieldName(decl, "name"))
		value := jsv.translate.TreeChildByFieldName(decl, "value")
		if topLevel && value != nil {
			switch value.Kind() {
			case "arrow_function", "function_expression", "function":
				jsv.handleFunction(ctx, value, parent, name)
				continue
			}
		}
		typ := typeAnnotation(jsv.translate, jsv.translate.TreeChildByFieldName(decl, "type"))
		if typ == "" {
			typ = jsv.newType(value)
		}
		jsv.translate.CurrentScope.Declare(name, jsv.translate.ResolveType(typ))
		if topLevel {
			jsv.TraverseNode(ctx, value, parent)
			continue
		}
		id := jsv.translate.Add(parent, ast.KindLocalVariable, name, decl)
		jsv.translate.Builder.SetType(id, typ)
		jsv.TraverseNode(ctx, value, id)
	}
}

func (jsv *JavaScriptVisitor) handleLoop(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	jsv.translate.PushScope()
	defer jsv.translate.PopScope()
	return jsv.translate.HandleStatement(ctx, tsNode, parent, ast.KindLoop)
}

func (jsv *JavaScriptVisitor) handleCallExpression(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	function := jsv.translate.TreeChildByFieldName(tsNode, "function")
	arity := jsv.translate.Arity(jsv.translate.TreeChildByFieldName(tsNode, "arguments"))

	var target string
	switch {
	case function == nil:
	case function.Kind() == "identifier":
		name := jsv.translate.String(function)
		if q, ok := jsv.translate.Imports[name]; ok {
			pkg := strings.Split(q, ".")
			target = FunctionTarget(pkg[:len(pkg)-1], name, arity)
		} else {
			target = FunctionTarget(jsv.translate.Builder.Package(), name, arity)
		}
	case function.Kind() == "member_expression":
		target = jsv.memberTarget(function, parent, arity)
	}
	return jsv.translate.HandleCall(ctx, tsNode, parent, target)
}

func (jsv *JavaScriptVisitor) memberTarget(function *tree_sitter.Node, parent ast.NodeID, arity int) string {
	object := jsv.translate.TreeChildByFieldName(function, "object")
	method := jsv.translate.String(jsv.translate.TreeChildByFieldName(function, "property"))
	if object == nil {
		return ""
	}
	switch object.Kind() {
	case "this":
		return CallTarget(jsv.translate.OwnClass(parent), method, arity)
	case "identifier":
		name := jsv.translate.String(object)
		if class := jsv.translate.CurrentScope.Resolve(name); class != "" {
			return CallTarget(class, method, arity)
		}
		if module, ok := jsv.translate.Imports[name]; ok {
			if _, isClass := jsv.translate.Classes[name]; !isClass && !leadingUpper(name) {
				return FunctionTarget(strings.Split(module, "."), method, arity)
			}
			return CallTarget(ClassFromDotted(module), method, arity)
		}
	case "member_expression":
		// this.field.method()
		inner := jsv.translate.TreeChildByFieldName(object, "object")
		if inner != nil && inner.Kind() == "this" {
			field := jsv.translate.String(jsv.translate.TreeChildByFieldName(object, "property"))
			return CallTarget(jsv.translate.CurrentScope.Resolve(field), method, arity)
		}
	}
	return ""
}
