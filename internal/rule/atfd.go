package rule

import (
	"context"
	"fmt"

	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
	"codemetrics/internal/metrics/coupling"
	"codemetrics/internal/property"
)

var atfdReportLevel = property.NewDoubleProperty("reportLevel", "Share of foreign accessor calls above which a violation is reported", 0, 1, 0.3)

// AccessToForeignDataRule reports operations and classes that mostly work on
// data of other classes.
type AccessToForeignDataRule struct {
	reportLevel float64
}

func NewAccessToForeignDataRule() *AccessToForeignDataRule {
	return &AccessToForeignDataRule{reportLevel: atfdReportLevel.Default}
}

func (r *AccessToForeignDataRule) Name() string { return "AccessToForeignData" }

func (r *AccessToForeignDataRule) Description() string {
	return "Code that reaches into other classes through their accessors"
}

func (r *AccessToForeignDataRule) Configure(props map[string]string) error {
	var err error
	if r.reportLevel, err = atfdReportLevel.From(props); err != nil {
		return fmt.Errorf("configure %s: %w", r.Name(), err)
	}
	return nil
}

func (r *AccessToForeignDataRule) Apply(ctx context.Context, s *metrics.Session, tree *ast.Tree) []Violation {
	var out []Violation
	for _, op := range ast.Operations(tree) {
		if cancelled(ctx) {
			return out
		}
		if atfd := s.Get(coupling.OperationATFD, op); metrics.Exceeds(atfd, r.reportLevel) {
			out = append(out, newViolation(r, op, atfd,
				"The %s '%s' accesses foreign data in %s of its calls.",
				kindLabel(op), op.Name(), formatValue(atfd)))
		}
	}
	for _, cls := range reportableClasses(tree) {
		if atfd := s.Get(coupling.ClassATFD, cls); metrics.Exceeds(atfd, r.reportLevel) {
			out = append(out, newViolation(r, cls, atfd,
				"The %s '%s' accesses foreign data in %s of its calls.",
				kindLabel(cls), cls.Name(), formatValue(atfd)))
		}
	}
	return out
}
