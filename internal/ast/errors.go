package ast

import "errors"

var (
	// ErrMalformedQualifiedName indicates a qualified name that does not follow
	// the pkg.Class$Nested#op(T) grammar
	ErrMalformedQualifiedName = errors.New("malformed qualified name")
)
