package rule

import (
	"context"
	"fmt"
	"math"
	"strings"

	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
	"codemetrics/internal/metrics/registry"
	"codemetrics/internal/property"
)

var (
	metricReportClasses = property.NewBoolProperty("reportClasses", "Add class violations to the report", true)
	metricReportMethods = property.NewBoolProperty("reportMethods", "Add operation violations to the report", true)
	metricReportLevel   = property.NewDoubleProperty("reportLevel", "Minimum value required to report", 0, math.MaxFloat64, 0)
)

// MetricRule reports every class and operation on which a named metric
// reaches reportLevel. Keys are resolved per tree language, so one rule
// covers every language sharing the metric name.
type MetricRule struct {
	name            string
	classMetric     string
	operationMetric string

	reportClasses bool
	reportMethods bool
	reportLevel   float64
	resultOption  metrics.ResultOption
	options       []metrics.Option
}

// NewMetricRule creates a rule for the given metric names. Either name may be
// empty to skip that category.
func NewMetricRule(name, classMetric, operationMetric string) *MetricRule {
	return &MetricRule{
		name:            name,
		classMetric:     classMetric,
		operationMetric: operationMetric,
		reportClasses:   metricReportClasses.Default,
		reportMethods:   metricReportMethods.Default,
		reportLevel:     metricReportLevel.Default,
	}
}

func (r *MetricRule) Name() string { return r.name }

func (r *MetricRule) Description() string {
	return fmt.Sprintf("Reports %s values at or above a threshold", strings.Trim(r.classMetric+"/"+r.operationMetric, "/"))
}

// Configure reads reportClasses, reportMethods, reportLevel, resultOption and
// a comma separated list of raw metric options under "options".
func (r *MetricRule) Configure(props map[string]string) error {
	var err error
	if r.reportClasses, err = metricReportClasses.From(props); err != nil {
		return fmt.Errorf("configure %s: %w", r.name, err)
	}
	if r.reportMethods, err = metricReportMethods.From(props); err != nil {
		return fmt.Errorf("configure %s: %w", r.name, err)
	}
	if r.reportLevel, err = metricReportLevel.From(props); err != nil {
		return fmt.Errorf("configure %s: %w", r.name, err)
	}
	if r.resultOption, err = metrics.ParseResultOption(props["resultOption"]); err != nil {
		return fmt.Errorf("configure %s: %w", r.name, err)
	}
	r.options = nil
	for _, o := range strings.Split(props["options"], ",") {
		if o = strings.TrimSpace(o); o != "" {
			r.options = append(r.options, metrics.Option(o))
		}
	}
	return nil
}

func (r *MetricRule) Apply(ctx context.Context, s *metrics.Session, tree *ast.Tree) []Violation {
	set := registry.ForLanguage(tree.Language())
	if set == nil {
		return nil
	}
	var out []Violation

	if r.reportClasses && r.classMetric != "" {
		if key, err := set.ClassKey(r.classMetric); err == nil {
			for _, cls := range reportableClasses(tree) {
				if cancelled(ctx) {
					return out
				}
				v := s.GetWithResult(key, cls, r.resultOption, r.options...)
				if metrics.AtLeast(v, r.reportLevel) {
					out = append(out, newViolation(r, cls, v, "The %s '%s' has a %s of %s.",
						kindLabel(cls), cls.Name(), key.Name(), formatValue(v)))
				}
			}
		}
	}

	if r.reportMethods && r.operationMetric != "" {
		if key, err := set.OperationKey(r.operationMetric); err == nil {
			for _, op := range ast.Operations(tree) {
				if cancelled(ctx) {
					return out
				}
				v := s.Get(key, op, r.options...)
				if metrics.AtLeast(v, r.reportLevel) {
					out = append(out, newViolation(r, op, v, "The %s '%s' has a %s of %s.",
						kindLabel(op), op.Name(), key.Name(), formatValue(v)))
				}
			}
		}
	}
	return out
}
