package size

import (
	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
)

var locMetadata = metrics.Metadata{
	FullName:    "Lines of Code",
	Description: "Total lines spanned by a class or operation, comments and blank lines included",
	Unit:        "lines",
	LowerBetter: true,
}

var (
	// OperationLOC is LOC measured on operations
	OperationLOC = metrics.NewOperationKey("LOC", NewLOCMetric(), locMetadata)

	// ClassLOC is LOC measured on classes
	ClassLOC = metrics.NewClassKey("LOC", NewLOCMetric(), OperationLOC, locMetadata)
)

// LOCMetric computes Lines of Code
type LOCMetric struct{}

// NewLOCMetric creates a new LOC metric
func NewLOCMetric() *LOCMetric {
	return &LOCMetric{}
}

func (m *LOCMetric) Supports(node ast.Node) bool {
	return true
}

// Compute returns 1 + end line - begin line.
func (m *LOCMetric) Compute(node ast.Node, _ *metrics.Session, _ metrics.Options) float64 {
	if node.EndLine() < node.BeginLine() {
		return metrics.NotSupported
	}
	return float64(1 + node.EndLine() - node.BeginLine())
}
