package analysis

import (
	"context"
	"fmt"

	"codemetrics/internal/ast"
	"codemetrics/internal/config"
	"codemetrics/internal/metrics"
	"codemetrics/internal/metrics/registry"
	"codemetrics/internal/report"
	"codemetrics/internal/rule"

	"go.uber.org/zap"
)

// RuleProcessor applies rules to every file and adds the violations to a
// report.
type RuleProcessor struct {
	rules  []rule.Rule
	report *report.Report
	logger *zap.Logger
}

func NewRuleProcessor(rules []rule.Rule, rep *report.Report, logger *zap.Logger) *RuleProcessor {
	return &RuleProcessor{rules: rules, report: rep, logger: logger}
}

func (p *RuleProcessor) Name() string { return "rules" }

func (p *RuleProcessor) ProcessFile(ctx context.Context, s *metrics.Session, fileCtx *FileContext) error {
	var found []rule.Violation
	for _, r := range p.rules {
		if err := ctx.Err(); err != nil {
			return err
		}
		vs := r.Apply(ctx, s, fileCtx.Tree)
		if len(vs) > 0 {
			p.logger.Debug("Rule reported violations",
				zap.String("rule", r.Name()),
				zap.String("path", fileCtx.RelativePath),
				zap.Int("count", len(vs)))
		}
		found = append(found, vs...)
	}
	p.report.AddViolations(found)
	return nil
}

func (p *RuleProcessor) PostProcess(ctx context.Context, repo *config.Repository) error {
	return nil
}

// MeasureProcessor records every supported metric of the file's language on
// each class and operation.
type MeasureProcessor struct {
	report *report.Report
	logger *zap.Logger
}

func NewMeasureProcessor(rep *report.Report, logger *zap.Logger) *MeasureProcessor {
	return &MeasureProcessor{report: rep, logger: logger}
}

func (p *MeasureProcessor) Name() string { return "measure" }

func (p *MeasureProcessor) ProcessFile(ctx context.Context, s *metrics.Session, fileCtx *FileContext) error {
	keys := registry.ForLanguage(fileCtx.Tree.Language())
	if keys == nil {
		return fmt.Errorf("no metrics for language %s", fileCtx.Tree.Language())
	}
	ms := Measure(s, fileCtx.Tree, keys)
	p.report.AddMeasurements(ms)
	return ctx.Err()
}

func (p *MeasureProcessor) PostProcess(ctx context.Context, repo *config.Repository) error {
	return nil
}

// Measure computes every key of keys on the matching nodes of tree. Values a
// key does not support are left out.
func Measure(s *metrics.Session, tree *ast.Tree, keys *registry.KeySet) []report.Measurement {
	var out []report.Measurement
	add := func(node ast.Node, key *metrics.Key) {
		v := s.Get(key, node)
		if !metrics.IsSupported(v) {
			return
		}
		m := report.Measurement{
			File:   tree.Path(),
			Kind:   node.Kind().String(),
			Metric: key.Name(),
			Value:  v,
		}
		if q, ok := node.QualifiedName(); ok {
			m.QualifiedName = q.String()
		}
		out = append(out, m)
	}
	for _, cls := range ast.Classes(tree) {
		if cls.Has(ast.ModSynthetic) {
			continue
		}
		for _, key := range keys.ClassKeys() {
			add(cls, key)
		}
	}
	for _, op := range ast.Operations(tree) {
		for _, key := range keys.OperationKeys() {
			add(op, key)
		}
	}
	return out
}
