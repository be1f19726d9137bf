package size

import (
	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
	"codemetrics/internal/signature"
)

var NOPA = metrics.NewClassKey("NOPA", NewNOPAMetric(), nil, metrics.Metadata{
	FullName:    "Number of Public Attributes",
	Description: "Count of public non-static fields of a class",
	Unit:        "count",
	LowerBetter: true,
})

type NOPAMetric struct {
	mask *signature.FieldMask
}

func NewNOPAMetric() *NOPAMetric {
	return &NOPAMetric{
		mask: signature.NewFieldMask().RestrictVisibilitiesTo(signature.Public).ForbidStatic(),
	}
}

// Supports excludes interfaces, whose fields are constants.
func (m *NOPAMetric) Supports(node ast.Node) bool {
	return node.Kind() == ast.KindClass || node.Kind() == ast.KindEnum
}

func (m *NOPAMetric) Compute(node ast.Node, s *metrics.Session, _ metrics.Options) float64 {
	q, ok := node.QualifiedName()
	if !ok {
		return metrics.NotSupported
	}
	mirror := s.Mirror()
	count := 0
	for _, field := range ast.ContainedFields(node) {
		if mirror.HasMatchingFieldSignatureFor(q, field.Name(), m.mask) {
			count++
		}
	}
	return float64(count)
}
