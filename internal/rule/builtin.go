package rule

import (
	"fmt"
	"sort"
)

var builtins = map[string]func() Rule{
	"CyclomaticComplexity": func() Rule { return NewCyclomaticComplexityRule() },
	"NcssCount":            func() Rule { return NewNcssCountRule() },
	"AccessToForeignData":  func() Rule { return NewAccessToForeignDataRule() },
}

// New returns a fresh instance of a built-in rule. When classMetric or
// operationMetric is set, a MetricRule with that name is returned instead.
func New(name, classMetric, operationMetric string) (Rule, error) {
	if classMetric != "" || operationMetric != "" {
		return NewMetricRule(name, classMetric, operationMetric), nil
	}
	if f, ok := builtins[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownRule, name)
}

// Defaults returns every built-in rule with default properties.
func Defaults() []Rule {
	names := BuiltinNames()
	out := make([]Rule, 0, len(names))
	for _, n := range names {
		out = append(out, builtins[n]())
	}
	return out
}

func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
