package size

import (
	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
	"codemetrics/internal/signature"
)

// NOAM counts public getters and setters
var NOAM = metrics.NewClassKey("NOAM", NewNOAMMetric(), nil, metrics.Metadata{
	FullName:    "Number of Accessor Methods",
	Description: "Count of public getter and setter methods in a class",
	Unit:        "count",
	LowerBetter: false, // More accessors isn't necessarily bad
})

// NOAMMetric computes Number of Accessor Methods
type NOAMMetric struct {
	mask *signature.OperationMask
}

// NewNOAMMetric creates a new NOAM metric
func NewNOAMMetric() *NOAMMetric {
	return &NOAMMetric{
		mask: signature.NewOperationMask().
			RestrictVisibilitiesTo(signature.Public).
			RestrictRolesTo(signature.RoleGetterOrSetter),
	}
}

// Supports accepts proper classes only.
func (m *NOAMMetric) Supports(node ast.Node) bool {
	return node.Kind() == ast.KindClass
}

func (m *NOAMMetric) Compute(node ast.Node, s *metrics.Session, _ metrics.Options) float64 {
	mirror := s.Mirror()
	count := 0
	for _, op := range ast.ContainedOperations(node) {
		q, ok := op.QualifiedName()
		if ok && mirror.HasMatchingSignatureFor(q, m.mask) {
			count++
		}
	}
	return float64(count)
}
