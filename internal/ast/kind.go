package ast

// Kind identifies the syntactic category of a node. Every language front-end
// maps its own grammar onto this common vocabulary.
type Kind uint8

const (
	KindCompilationUnit Kind = iota
	KindPackage
	KindImport
	KindClass
	KindInterface
	KindEnum
	KindAnnotation
	KindMethod
	KindConstructor
	KindTrigger
	KindField
	KindParameter
	KindBlock
	KindStatement
	KindLocalVariable
	KindIf
	KindLoop
	KindSwitch
	KindCase
	KindCatch
	KindTry
	KindTernary
	KindBooleanOp
	KindCall
	KindReturn
	KindThrow
	KindLambda
	KindOther
)

var kindNames = [...]string{
	KindCompilationUnit: "compilation_unit",
	KindPackage:         "package",
	KindImport:          "import",
	KindClass:           "class",
	KindInterface:       "interface",
	KindEnum:            "enum",
	KindAnnotation:      "annotation",
	KindMethod:          "method",
	KindConstructor:     "constructor",
	KindTrigger:         "trigger",
	KindField:           "field",
	KindParameter:       "parameter",
	KindBlock:           "block",
	KindStatement:       "statement",
	KindLocalVariable:   "local_variable",
	KindIf:              "if",
	KindLoop:            "loop",
	KindSwitch:          "switch",
	KindCase:            "case",
	KindCatch:           "catch",
	KindTry:             "try",
	KindTernary:         "ternary",
	KindBooleanOp:       "boolean_op",
	KindCall:            "call",
	KindReturn:          "return",
	KindThrow:           "throw",
	KindLambda:          "lambda",
	KindOther:           "other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsClassLike reports whether nodes of this kind declare a type that can own
// operations and fields.
func (k Kind) IsClassLike() bool {
	switch k {
	case KindClass, KindInterface, KindEnum, KindAnnotation:
		return true
	}
	return false
}

// IsOperationLike reports whether nodes of this kind declare executable
// members: methods, constructors, triggers and free functions.
func (k Kind) IsOperationLike() bool {
	switch k {
	case KindMethod, KindConstructor, KindTrigger:
		return true
	}
	return false
}

// IsStatement reports whether the kind is an executable statement or a
// declaration local to an operation body.
func (k Kind) IsStatement() bool {
	switch k {
	case KindStatement, KindLocalVariable, KindIf, KindLoop, KindSwitch, KindCase,
		KindCatch, KindTry, KindReturn, KindThrow:
		return true
	}
	return false
}

// IsDecisionPoint reports whether the kind adds a branch to the control flow.
func (k Kind) IsDecisionPoint() bool {
	switch k {
	case KindIf, KindLoop, KindCase, KindCatch, KindTernary, KindBooleanOp:
		return true
	}
	return false
}

// Modifiers is a bit set of declaration modifiers.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModPrivate
	ModProtected
	ModStatic
	ModFinal
	ModAbstract
	// ModAccessor marks operations declared with explicit accessor syntax
	// (get/set properties).
	ModAccessor
	// ModSynthetic marks nodes created by a front-end without a matching
	// declaration in the file, e.g. Go receiver types declared elsewhere.
	ModSynthetic
)

func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod == mod
}

func (m Modifiers) String() string {
	names := []struct {
		mod  Modifiers
		name string
	}{
		{ModPublic, "public"},
		{ModPrivate, "private"},
		{ModProtected, "protected"},
		{ModStatic, "static"},
		{ModFinal, "final"},
		{ModAbstract, "abstract"},
		{ModAccessor, "accessor"},
		{ModSynthetic, "synthetic"},
	}
	out := ""
	for _, n := range names {
		if m.Has(n.mod) {
			if out != "" {
				out += " "
			}
			out += n.name
		}
	}
	return out
}
