// Package rule evaluates metric thresholds on syntax trees and reports
// violations.
package rule

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
)

// Violation is one reported finding
type Violation struct {
	Rule          string  `json:"rule"`
	Message       string  `json:"message"`
	File          string  `json:"file"`
	BeginLine     int     `json:"begin_line"`
	EndLine       int     `json:"end_line"`
	QualifiedName string  `json:"qualified_name"`
	Value         float64 `json:"value"`
}

// Rule checks one tree. Apply must only read metrics through the session.
type Rule interface {
	Name() string
	Description() string
	// Configure reads the rule's properties. Missing entries keep their
	// defaults.
	Configure(props map[string]string) error
	Apply(ctx context.Context, s *metrics.Session, tree *ast.Tree) []Violation
}

func newViolation(r Rule, node ast.Node, value float64, format string, args ...any) Violation {
	v := Violation{
		Rule:      r.Name(),
		Message:   fmt.Sprintf(format, args...),
		File:      node.Tree().Path(),
		BeginLine: node.BeginLine(),
		EndLine:   node.EndLine(),
		Value:     value,
	}
	if q, ok := node.QualifiedName(); ok {
		v.QualifiedName = q.String()
	}
	return v
}

// SortViolations orders violations by file, then position, then rule.
func SortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.BeginLine != b.BeginLine {
			return a.BeginLine < b.BeginLine
		}
		return a.Rule < b.Rule
	})
}

// formatValue prints integral values without decimals.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// kindLabel names a declaration the way messages refer to it.
func kindLabel(n ast.Node) string {
	switch n.Kind() {
	case ast.KindMethod:
		if !ast.EnclosingClass(n).IsValid() {
			return "function"
		}
		return "method"
	default:
		return n.Kind().String()
	}
}

// reportableClasses skips classes synthesised by front-ends; their real
// declaration lives in another file.
func reportableClasses(tree *ast.Tree) []ast.Node {
	var out []ast.Node
	for _, cls := range ast.Classes(tree) {
		if !cls.Has(ast.ModSynthetic) {
			out = append(out, cls)
		}
	}
	return out
}

func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
