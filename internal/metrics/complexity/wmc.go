package complexity

import (
	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
)

// WMC sums the cyclomatic complexity of the operations of a class
var WMC = metrics.NewClassKey("WMC", NewWMCMetric(), Cyclo, metrics.Metadata{
	FullName:    "Weighted Method Count",
	Description: "Sum of the cyclomatic complexity of all operations in a class",
	Unit:        "paths",
	LowerBetter: true,
}, IgnoreBooleanPaths)

// WMCMetric computes Weighted Method Count
type WMCMetric struct{}

// NewWMCMetric creates a new WMC metric
func NewWMCMetric() *WMCMetric {
	return &WMCMetric{}
}

// Supports accepts classes and enums. Interfaces declare no bodies.
func (m *WMCMetric) Supports(node ast.Node) bool {
	return node.Kind() == ast.KindClass || node.Kind() == ast.KindEnum
}

func (m *WMCMetric) Compute(node ast.Node, s *metrics.Session, opts metrics.Options) float64 {
	return s.GetWithResult(Cyclo, node, metrics.ResultSum, opts.List()...)
}
