package ast

import (
	"fmt"
	"strings"
)

// UnknownType stands for a parameter type the front-end could not determine.
// It matches any type of the same position.
const UnknownType = "?"

// QualifiedName identifies a class or an operation across the project:
//
//	pkg.sub.Outer$Inner#op(T1,T2)
//
// Free functions have an empty class chain, e.g. "pkg.#main()".
type QualifiedName struct {
	Packages  []string
	Classes   []string
	Operation string
	Params    []string
}

func (q QualifiedName) IsOperation() bool {
	return q.Operation != ""
}

// ClassName drops the operation part.
func (q QualifiedName) ClassName() QualifiedName {
	return QualifiedName{
		Packages: append([]string(nil), q.Packages...),
		Classes:  append([]string(nil), q.Classes...),
	}
}

// Signature returns "op(T1,T2)" for operations.
func (q QualifiedName) Signature() string {
	if !q.IsOperation() {
		return ""
	}
	return q.Operation + "(" + strings.Join(q.Params, ",") + ")"
}

// Arity is the number of parameters of an operation.
func (q QualifiedName) Arity() int {
	return len(q.Params)
}

// ClassString renders the class part only.
func (q QualifiedName) ClassString() string {
	var sb strings.Builder
	for _, p := range q.Packages {
		sb.WriteString(EscapeSegment(p))
		sb.WriteByte('.')
	}
	for i, c := range q.Classes {
		if i > 0 {
			sb.WriteByte('$')
		}
		sb.WriteString(EscapeSegment(c))
	}
	return sb.String()
}

func (q QualifiedName) String() string {
	if !q.IsOperation() {
		return q.ClassString()
	}
	return q.ClassString() + "#" + EscapeSegment(q.Operation) + "(" + strings.Join(q.Params, ",") + ")"
}

// Equal compares structurally.
func (q QualifiedName) Equal(o QualifiedName) bool {
	return q.String() == o.String()
}

// segmentSpecials are escaped with a backslash when they occur inside a
// package, class or operation name, e.g. the Java class "A$Gen" renders as
// "A\$Gen".
const segmentSpecials = `\.$#(),`

// EscapeSegment escapes the separators of the qualified name syntax in one
// name.
func EscapeSegment(seg string) string {
	if !strings.ContainsAny(seg, segmentSpecials) {
		return seg
	}
	var sb strings.Builder
	for _, r := range seg {
		if strings.ContainsRune(segmentSpecials, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func unescapeSegment(seg string) string {
	if !strings.ContainsRune(seg, '\\') {
		return seg
	}
	var sb strings.Builder
	escaped := false
	for _, r := range seg {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// indexUnescaped returns the index of the first sep not preceded by a
// backslash, or -1.
func indexUnescaped(s string, sep byte) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			return i
		}
	}
	return -1
}

func splitUnescaped(s string, sep byte) []string {
	var out []string
	for {
		i := indexUnescaped(s, sep)
		if i < 0 {
			return append(out, s)
		}
		out = append(out, s[:i])
		s = s[i+1:]
	}
}

// ParseQualifiedName parses the format produced by String.
func ParseQualifiedName(s string) (QualifiedName, error) {
	var q QualifiedName
	s = strings.TrimSpace(s)
	if s == "" {
		return q, fmt.Errorf("%w: empty name", ErrMalformedQualifiedName)
	}

	classPart, opPart, hasOp := s, "", false
	if i := indexUnescaped(s, '#'); i >= 0 {
		classPart, opPart, hasOp = s[:i], s[i+1:], true
	}

	segs := splitUnescaped(classPart, '.')
	for _, seg := range segs[:len(segs)-1] {
		if !validSegment(seg) {
			return QualifiedName{}, fmt.Errorf("%w: bad package segment in %q", ErrMalformedQualifiedName, s)
		}
		q.Packages = append(q.Packages, unescapeSegment(seg))
	}
	if last := segs[len(segs)-1]; last != "" {
		for _, seg := range splitUnescaped(last, '$') {
			if !validSegment(seg) {
				return QualifiedName{}, fmt.Errorf("%w: bad class segment in %q", ErrMalformedQualifiedName, s)
			}
			q.Classes = append(q.Classes, unescapeSegment(seg))
		}
	}

	if !hasOp {
		if len(q.Classes) == 0 {
			return QualifiedName{}, fmt.Errorf("%w: no class in %q", ErrMalformedQualifiedName, s)
		}
		return q, nil
	}

	open := indexUnescaped(opPart, '(')
	if open <= 0 || !strings.HasSuffix(opPart, ")") {
		return QualifiedName{}, fmt.Errorf("%w: bad operation in %q", ErrMalformedQualifiedName, s)
	}
	if !validSegment(opPart[:open]) {
		return QualifiedName{}, fmt.Errorf("%w: bad operation name in %q", ErrMalformedQualifiedName, s)
	}
	q.Operation = unescapeSegment(opPart[:open])
	q.Params = []string{}
	params := strings.TrimSpace(opPart[open+1 : len(opPart)-1])
	if params == "" {
		return q, nil
	}
	for _, p := range splitParams(params) {
		if strings.TrimSpace(p) == "" {
			return QualifiedName{}, fmt.Errorf("%w: empty parameter type in %q", ErrMalformedQualifiedName, s)
		}
		q.Params = append(q.Params, NormalizeType(p))
	}
	return q, nil
}

// validSegment checks one escaped segment: not empty, no unescaped
// separator and no dangling backslash.
func validSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for i := 0; i < len(seg); i++ {
		switch seg[i] {
		case '\\':
			if i == len(seg)-1 {
				return false
			}
			i++
		case ' ', '\t', '(', ')', '#', '$', ',':
			return false
		}
	}
	return true
}

// splitParams splits on commas outside generic brackets.
func splitParams(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<', '[':
			depth++
		case '>', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// NormalizeType erases a declared type to the form used in signatures:
// whitespace and generic arguments are removed, package prefixes are dropped
// and varargs become arrays. An empty type becomes UnknownType.
func NormalizeType(t string) string {
	t = strings.Join(strings.Fields(t), "")
	if t == "" {
		return UnknownType
	}

	var sb strings.Builder
	depth := 0
	for _, r := range t {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			sb.WriteRune(r)
		}
	}
	t = sb.String()

	if strings.HasSuffix(t, "...") {
		t = strings.TrimSuffix(t, "...") + "[]"
	}
	rest := strings.TrimLeft(t, "*&[]")
	lead := t[:len(t)-len(rest)]
	if i := strings.LastIndexByte(rest, '.'); i >= 0 && i < len(rest)-1 {
		t = lead + rest[i+1:]
	}
	if t == "" {
		return UnknownType
	}
	return t
}

// SameType reports whether two erased parameter types match, treating
// UnknownType as a wildcard.
func SameType(a, b string) bool {
	return a == UnknownType || b == UnknownType || a == b
}
