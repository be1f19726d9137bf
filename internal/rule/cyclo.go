package rule

import (
	"context"
	"fmt"

	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
	"codemetrics/internal/metrics/complexity"
	"codemetrics/internal/property"
)

var (
	cycloClassReportLevel  = property.NewIntProperty("classReportLevel", "Total class complexity reporting threshold", 1, 600, 80)
	cycloMethodReportLevel = property.NewIntProperty("methodReportLevel", "Cyclomatic complexity reporting threshold", 1, 50, 10)
	cycloOptions           = property.NewOptionsProperty("cycloOptions", "Choose options for the computation of Cyclo",
		map[string]metrics.Option{"ignoreBooleanPaths": complexity.IgnoreBooleanPaths})
)

// CyclomaticComplexityRule reports classes whose total complexity (WMC) and
// operations whose cyclomatic complexity reach their thresholds.
type CyclomaticComplexityRule struct {
	classReportLevel  int
	methodReportLevel int
	options           []metrics.Option
}

func NewCyclomaticComplexityRule() *CyclomaticComplexityRule {
	return &CyclomaticComplexityRule{
		classReportLevel:  cycloClassReportLevel.Default,
		methodReportLevel: cycloMethodReportLevel.Default,
	}
}

func (r *CyclomaticComplexityRule) Name() string { return "CyclomaticComplexity" }

func (r *CyclomaticComplexityRule) Description() string {
	return "Operations and classes with too many independent paths"
}

func (r *CyclomaticComplexityRule) Configure(props map[string]string) error {
	var err error
	if r.classReportLevel, err = cycloClassReportLevel.From(props); err != nil {
		return fmt.Errorf("configure %s: %w", r.Name(), err)
	}
	if r.methodReportLevel, err = cycloMethodReportLevel.From(props); err != nil {
		return fmt.Errorf("configure %s: %w", r.Name(), err)
	}
	if r.options, err = cycloOptions.From(props); err != nil {
		return fmt.Errorf("configure %s: %w", r.Name(), err)
	}
	return nil
}

func (r *CyclomaticComplexityRule) Apply(ctx context.Context, s *metrics.Session, tree *ast.Tree) []Violation {
	var out []Violation
	for _, cls := range reportableClasses(tree) {
		if cancelled(ctx) {
			return out
		}
		if !complexity.WMC.Supports(cls) {
			continue
		}
		wmc := s.Get(complexity.WMC, cls, r.options...)
		if !metrics.AtLeast(wmc, float64(r.classReportLevel)) {
			continue
		}
		highest := s.GetWithResult(complexity.Cyclo, cls, metrics.ResultHighest, r.options...)
		out = append(out, newViolation(r, cls, wmc,
			"The %s '%s' has a total cyclomatic complexity of %s (highest %s).",
			kindLabel(cls), cls.Name(), formatValue(wmc), formatValue(highest)))
	}

	for _, op := range ast.Operations(tree) {
		if cancelled(ctx) {
			return out
		}
		if !complexity.Cyclo.Supports(op) {
			continue
		}
		cyclo := s.Get(complexity.Cyclo, op, r.options...)
		if metrics.AtLeast(cyclo, float64(r.methodReportLevel)) {
			out = append(out, newViolation(r, op, cyclo,
				"The %s '%s' has a cyclomatic complexity of %s.",
				kindLabel(op), op.Name(), formatValue(cyclo)))
		}
	}
	return out
}
