package size

import (
	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
)

// CountImports adds package and import declarations to the NCSS of
// top-level classes.
const CountImports metrics.Option = "countImports"

var ncssMetadata = metrics.Metadata{
	FullName:    "Non-Commenting Source Statements",
	Description: "Number of statements and declarations, ignoring comments and formatting",
	Unit:        "statements",
	LowerBetter: true,
}

var (
	OperationNCSS = metrics.NewOperationKey("NCSS", NewNCSSMetric(), ncssMetadata)
	ClassNCSS     = metrics.NewClassKey("NCSS", NewNCSSMetric(), OperationNCSS, ncssMetadata, CountImports)
)

// NCSSMetric counts statements and declarations
type NCSSMetric struct{}

func NewNCSSMetric() *NCSSMetric {
	return &NCSSMetric{}
}

func (m *NCSSMetric) Supports(node ast.Node) bool {
	return true
}

func (m *NCSSMetric) Compute(node ast.Node, _ *metrics.Session, opts metrics.Options) float64 {
	if node.Kind().IsOperationLike() {
		return float64(1 + countStatements(ast.DescendantsNoNested(node)))
	}

	n := 1 + countStatements(ast.Descendants(node))
	if opts.Contains(CountImports) && node.Parent().Kind() == ast.KindCompilationUnit {
		n += len(node.Parent().ChildrenOfKind(ast.KindPackage, ast.KindImport))
	}
	return float64(n)
}

func countStatements(nodes []ast.Node) int {
	n := 0
	for _, d := range nodes {
		if isNCSSElement(d.Kind()) {
			n++
		}
	}
	return n
}

func isNCSSElement(k ast.Kind) bool {
	return k.IsStatement() || k.IsClassLike() || k.IsOperationLike() || k == ast.KindField
}
