package analysis

import (
	"codemetrics/internal/config"
	"codemetrics/internal/rule"
)

// RulesFromConfig instantiates and configures the enabled rules. With no rule
// configured at all, every built-in rule runs with its defaults.
func RulesFromConfig(cfgs []config.RuleConfig) ([]rule.Rule, error) {
	if len(cfgs) == 0 {
		return rule.Defaults(), nil
	}
	var rules []rule.Rule
	for _, rc := range cfgs {
		if rc.Disabled {
			continue
		}
		r, err := rule.New(rc.Name, rc.ClassMetric, rc.OperationMetric)
		if err != nil {
			return nil, err
		}
		if err := r.Configure(rc.Properties); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}
