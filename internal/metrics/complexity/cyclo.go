package complexity

import (
	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
)

// IgnoreBooleanPaths stops && and || operators from adding paths.
const IgnoreBooleanPaths metrics.Option = "ignoreBooleanPaths"

// Cyclo is the cyclomatic complexity of an operation
var Cyclo = metrics.NewOperationKey("CYCLO", NewCycloMetric(), metrics.Metadata{
	FullName:    "Cyclomatic Complexity",
	Description: "Number of linearly independent paths through code",
	Unit:        "paths",
	LowerBetter: true,
}, IgnoreBooleanPaths)

// CycloMetric computes Cyclomatic Complexity
type CycloMetric struct{}

// NewCycloMetric creates a new CYCLO metric
func NewCycloMetric() *CycloMetric {
	return &CycloMetric{}
}

func (m *CycloMetric) Supports(node ast.Node) bool {
	return !node.Has(ast.ModAbstract)
}

// Compute counts one path plus one per decision point. Nested class
// declarations belong to their own class and are not visited.
func (m *CycloMetric) Compute(node ast.Node, _ *metrics.Session, opts metrics.Options) float64 {
	ignoreBoolean := opts.Contains(IgnoreBooleanPaths)
	paths := 1
	for _, n := range ast.DescendantsNoNested(node) {
		switch n.Kind() {
		case ast.KindIf, ast.KindLoop, ast.KindCase, ast.KindCatch, ast.KindTernary:
			paths++
		case ast.KindBooleanOp:
			if !ignoreBoolean {
				paths++
			}
		}
	}
	return float64(paths)
}
