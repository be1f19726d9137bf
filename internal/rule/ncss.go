package rule

import (
	"context"
	"fmt"

	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
	"codemetrics/internal/metrics/size"
	"codemetrics/internal/property"
)

var (
	ncssMethodReportLevel = property.NewIntProperty("methodReportLevel", "NCSS reporting threshold for methods", 1, 60, 12)
	ncssClassReportLevel  = property.NewIntProperty("classReportLevel", "NCSS reporting threshold for classes", 1, 1000, 250)
	ncssOptions           = property.NewOptionsProperty("ncssOptions", "Choose options for the computation of NCSS",
		map[string]metrics.Option{"countImports": size.CountImports})
)

// NcssCountRule reports classes and operations with too many statements.
type NcssCountRule struct {
	methodReportLevel int
	classReportLevel  int
	options           []metrics.Option
}

func NewNcssCountRule() *NcssCountRule {
	return &NcssCountRule{
		methodReportLevel: ncssMethodReportLevel.Default,
		classReportLevel:  ncssClassReportLevel.Default,
	}
}

func (r *NcssCountRule) Name() string { return "NcssCount" }

func (r *NcssCountRule) Description() string {
	return "Classes and operations with too many non-commenting source statements"
}

func (r *NcssCountRule) Configure(props map[string]string) error {
	var err error
	if r.methodReportLevel, err = ncssMethodReportLevel.From(props); err != nil {
		return fmt.Errorf("configure %s: %w", r.Name(), err)
	}
	if r.classReportLevel, err = ncssClassReportLevel.From(props); err != nil {
		return fmt.Errorf("configure %s: %w", r.Name(), err)
	}
	if r.options, err = ncssOptions.From(props); err != nil {
		return fmt.Errorf("configure %s: %w", r.Name(), err)
	}
	return nil
}

func (r *NcssCountRule) Apply(ctx context.Context, s *metrics.Session, tree *ast.Tree) []Violation {
	var out []Violation
	for _, cls := range reportableClasses(tree) {
		if cancelled(ctx) {
			return out
		}
		ncss := s.Get(size.ClassNCSS, cls, r.options...)
		if metrics.AtLeast(ncss, float64(r.classReportLevel)) {
			highest := s.GetWithResult(size.ClassNCSS, cls, metrics.ResultHighest, r.options...)
			out = append(out, newViolation(r, cls, ncss,
				"The %s '%s' has a NCSS line count of %s (highest %s).",
				kindLabel(cls), cls.Name(), formatValue(ncss), formatValue(highest)))
		}
	}
	for _, op := range ast.Operations(tree) {
		if cancelled(ctx) {
			return out
		}
		ncss := s.Get(size.OperationNCSS, op, r.options...)
		if metrics.AtLeast(ncss, float64(r.methodReportLevel)) {
			out = append(out, newViolation(r, op, ncss,
				"The %s '%s' has a NCSS line count of %s.",
				kindLabel(op), op.Name(), formatValue(ncss)))
		}
	}
	return out
}
