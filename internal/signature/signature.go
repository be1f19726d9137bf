// Package signature describes the externally visible shape of operations and
// fields, and provides masks to test those shapes. Signatures are what the
// project mirror stores for every declaration in the analysed code base.
package signature

import "codemetrics/internal/ast"

// Visibility of a declaration
type Visibility uint8

const (
	Public Visibility = iota
	Protected
	Package
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Package:
		return "package"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// Role of an operation within its class
type Role uint8

const (
	RoleMethod Role = iota
	RoleGetterOrSetter
	RoleConstructor
	RoleStatic
)

func (r Role) String() string {
	switch r {
	case RoleMethod:
		return "method"
	case RoleGetterOrSetter:
		return "getter_or_setter"
	case RoleConstructor:
		return "constructor"
	case RoleStatic:
		return "static"
	default:
		return "unknown"
	}
}

// OperationSignature summarises an operation declaration
type OperationSignature struct {
	Visibility Visibility
	Role       Role
	Abstract   bool
}

// FieldSignature summarises a field declaration
type FieldSignature struct {
	Visibility Visibility
	Static     bool
	Final      bool
}

// VisibilityOf maps the modifiers of a node to a visibility. Nodes without an
// explicit modifier get package visibility.
func VisibilityOf(n ast.Node) Visibility {
	switch m := n.Modifiers(); {
	case m.Has(ast.ModPrivate):
		return Private
	case m.Has(ast.ModProtected):
		return Protected
	case m.Has(ast.ModPublic):
		return Public
	default:
		return Package
	}
}

// FieldSignatureOf builds the signature of a field node.
func FieldSignatureOf(field ast.Node) FieldSignature {
	return FieldSignature{
		Visibility: VisibilityOf(field),
		Static:     field.Has(ast.ModStatic),
		Final:      field.Has(ast.ModFinal),
	}
}
