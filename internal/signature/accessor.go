package signature

import (
	"regexp"

	"codemetrics/internal/ast"
)

// Thresholds for simple accessor detection
const (
	// MaxAccessorLOC is the maximum lines of code for a simple accessor
	MaxAccessorLOC = 5
	// MaxAccessorDecisions is the maximum number of branches in an accessor
	MaxAccessorDecisions = 0
)

// Default getter patterns for common languages
var defaultGetterPatterns = map[string][]string{
	"go":         {`^Get[A-Z]`, `^Is[A-Z]`, `^Has[A-Z]`, `^Can[A-Z]`},
	"java":       {`^get[A-Z]`, `^is[A-Z]`, `^has[A-Z]`},
	"python":     {`^get_`, `^is_`, `^has_`},
	"javascript": {`^get[A-Z]`, `^is[A-Z]`, `^has[A-Z]`},
	"typescript": {`^get[A-Z]`, `^is[A-Z]`, `^has[A-Z]`},
}

// Default setter patterns for common languages
var defaultSetterPatterns = map[string][]string{
	"go":         {`^Set[A-Z]`},
	"java":       {`^set[A-Z]`},
	"python":     {`^set_`},
	"javascript": {`^set[A-Z]`},
	"typescript": {`^set[A-Z]`},
}

// Detector classifies operations into signatures. Getters and setters are
// recognised by language-specific name patterns plus a trivial body, or by
// explicit accessor syntax.
type Detector struct {
	getters map[string][]*regexp.Regexp
	setters map[string][]*regexp.Regexp
}

func NewDetector() *Detector {
	d := &Detector{
		getters: make(map[string][]*regexp.Regexp),
		setters: make(map[string][]*regexp.Regexp),
	}
	for lang, patterns := range defaultGetterPatterns {
		for _, p := range patterns {
			d.RegisterGetterPattern(lang, p)
		}
	}
	for lang, patterns := range defaultSetterPatterns {
		for _, p := range patterns {
			d.RegisterSetterPattern(lang, p)
		}
	}
	return d
}

// RegisterGetterPattern adds a name pattern for a language. Invalid
// expressions are ignored.
func (d *Detector) RegisterGetterPattern(language, pattern string) {
	if re, err := regexp.Compile(pattern); err == nil {
		d.getters[language] = append(d.getters[language], re)
	}
}

func (d *Detector) RegisterSetterPattern(language, pattern string) {
	if re, err := regexp.Compile(pattern); err == nil {
		d.setters[language] = append(d.setters[language], re)
	}
}

// OperationSignatureOf builds the signature of an operation node.
func (d *Detector) OperationSignatureOf(op ast.Node) OperationSignature {
	return OperationSignature{
		Visibility: VisibilityOf(op),
		Role:       d.RoleOf(op),
		Abstract:   op.Has(ast.ModAbstract),
	}
}

// RoleOf classifies an operation. Constructors win over static, static over
// accessors.
func (d *Detector) RoleOf(op ast.Node) Role {
	switch {
	case op.Kind() == ast.KindConstructor:
		return RoleConstructor
	case op.Has(ast.ModStatic):
		return RoleStatic
	case d.IsAccessor(op):
		return RoleGetterOrSetter
	default:
		return RoleMethod
	}
}

func (d *Detector) IsAccessor(op ast.Node) bool {
	return d.IsGetter(op) || d.IsSetter(op)
}

func (d *Detector) IsGetter(op ast.Node) bool {
	if !op.Kind().IsOperationLike() || op.Kind() == ast.KindConstructor {
		return false
	}
	arity := len(ast.Parameters(op))
	if op.Has(ast.ModAccessor) {
		return arity == 0
	}
	return arity == 0 && d.matches(d.getters, op) && isSimpleBody(op)
}

func (d *Detector) IsSetter(op ast.Node) bool {
	if !op.Kind().IsOperationLike() || op.Kind() == ast.KindConstructor {
		return false
	}
	arity := len(ast.Parameters(op))
	if op.Has(ast.ModAccessor) {
		return arity == 1
	}
	return arity == 1 && d.matches(d.setters, op) && isSimpleBody(op)
}

func (d *Detector) matches(patterns map[string][]*regexp.Regexp, op ast.Node) bool {
	lang := ""
	if t := op.Tree(); t != nil {
		lang = t.Language()
	}
	res, ok := patterns[lang]
	if !ok {
		// Fall back to Go patterns as default
		res = patterns["go"]
	}
	for _, re := range res {
		if re.MatchString(op.Name()) {
			return true
		}
	}
	return false
}

// isSimpleBody checks the accessor is short and free of branching.
func isSimpleBody(op ast.Node) bool {
	if loc := op.EndLine() - op.BeginLine() + 1; loc > MaxAccessorLOC {
		return false
	}
	decisions := 0
	for _, n := range ast.DescendantsNoNested(op) {
		if n.Kind().IsDecisionPoint() {
			decisions++
		}
	}
	return decisions <= MaxAccessorDecisions
}
