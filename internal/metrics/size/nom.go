package size

import (
	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
	"codemetrics/internal/signature"
)

var NOM = metrics.NewClassKey("NOM", NewNOMMetric(), nil, metrics.Metadata{
	FullName:    "Number of Methods",
	Description: "Count of operations declared by a class, constructors excluded",
	Unit:        "count",
	LowerBetter: true,
})

// NOMMetric counts the operations of a class as recorded in the project
// mirror, so Go methods declared in other files of the package are included.
type NOMMetric struct {
	mask *signature.OperationMask
}

func NewNOMMetric() *NOMMetric {
	return &NOMMetric{
		mask: signature.NewOperationMask().RemoveRoles(signature.RoleConstructor),
	}
}

func (m *NOMMetric) Supports(node ast.Node) bool {
	return true
}

func (m *NOMMetric) Compute(node ast.Node, s *metrics.Session, _ metrics.Options) float64 {
	q, ok := node.QualifiedName()
	if !ok {
		return metrics.NotSupported
	}
	if cs, found := s.Mirror().FindClass(q); found {
		return float64(cs.CountMatchingOperations(m.mask))
	}
	count := 0
	for _, op := range ast.ContainedOperations(node) {
		if op.Kind() != ast.KindConstructor {
			count++
		}
	}
	return float64(count)
}
