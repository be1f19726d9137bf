package coupling

import (
	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
	"codemetrics/internal/metrics/mirror"
	"codemetrics/internal/signature"
)

var atfdMetadata = metrics.Metadata{
	FullName:    "Access to Foreign Data",
	Description: "Share of calls that read or write data of other classes through their public accessors",
	Unit:        "ratio",
	LowerBetter: true,
}

var (
	OperationATFD = metrics.NewOperationKey("ATFD", NewATFDMetric(), atfdMetadata)
	ClassATFD     = metrics.NewClassKey("ATFD", NewATFDMetric(), OperationATFD, atfdMetadata)
)

// ATFDMetric computes Access to Foreign Data. Operations measure their own
// calls; classes measure every call made in their body.
type ATFDMetric struct {
	mask *signature.OperationMask
}

// NewATFDMetric creates a new ATFD metric
func NewATFDMetric() *ATFDMetric {
	return &ATFDMetric{
		mask: signature.NewOperationMask().
			RestrictVisibilitiesTo(signature.Public).
			RestrictRolesTo(signature.RoleGetterOrSetter),
	}
}

func (m *ATFDMetric) Supports(node ast.Node) bool {
	switch node.Kind() {
	case ast.KindClass, ast.KindEnum:
		return true
	default:
		return node.Kind().IsOperationLike()
	}
}

func (m *ATFDMetric) Compute(node ast.Node, s *metrics.Session, _ metrics.Options) float64 {
	calls := ast.DescendantsNoNested(node, ast.KindCall)
	if len(calls) == 0 {
		return 0
	}

	owner := node
	if !node.Kind().IsClassLike() {
		owner = ast.EnclosingClass(node)
	}
	ownerName, _ := owner.QualifiedName()

	pm := s.Mirror()
	foreign := 0
	for _, call := range calls {
		if m.isForeignAccess(pm, call.Target(), ownerName) {
			foreign++
		}
	}
	return float64(foreign) / float64(len(calls))
}

// isForeignAccess reports whether target is a public accessor of a class
// other than owner. Classes nested in owner count as owner.
func (m *ATFDMetric) isForeignAccess(pm *mirror.ProjectMirror, target string, owner ast.QualifiedName) bool {
	if target == "" {
		return false
	}
	q, err := ast.ParseQualifiedName(target)
	if err != nil || !q.IsOperation() || len(q.Classes) == 0 {
		return false
	}
	if withinClass(q, owner) {
		return false
	}
	return pm.HasMatchingSignatureFor(q, m.mask)
}

// withinClass reports whether q names owner or a class nested in it.
func withinClass(q, owner ast.QualifiedName) bool {
	if len(owner.Classes) == 0 || len(q.Classes) < len(owner.Classes) {
		return false
	}
	prefix := ast.QualifiedName{Packages: q.Packages, Classes: q.Classes[:len(owner.Classes)]}
	return prefix.ClassString() == owner.ClassString()
}
