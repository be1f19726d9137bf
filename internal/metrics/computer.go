package metrics

import (
	"fmt"

	"codemetrics/internal/ast"

	"go.uber.org/zap"
)

// Computer evaluates keys on nodes, going through the node's memoizer.
type Computer struct {
	logger *zap.Logger
}

func NewComputer(logger *zap.Logger) *Computer {
	return &Computer{logger: logger}
}

// Compute returns the value of key on node. For class-like nodes a result
// option other than ResultNone reduces the paired operation metric over the
// operations the class declares; reduced values are not cached on the class.
// A class key only reduces on classes it supports. An operation key reduces
// on any class-like node.
func (c *Computer) Compute(s *Session, key *Key, node ast.Node, ro ResultOption, opts Options) float64 {
	if key == nil || !node.IsValid() {
		return NotSupported
	}
	if key.Category() == CategoryClass && !key.Supports(node) {
		return NotSupported
	}
	if ro != ResultNone && node.Kind().IsClassLike() {
		return c.computeWithResultOption(s, key, node, ro, opts)
	}
	if !key.Supports(node) {
		return NotSupported
	}

	pk := ParameterizedKey{Key: key, Options: key.Filter(opts)}
	memo := s.memoizer(node)
	if v, ok := memo.Memo(pk); ok {
		return v
	}

	s.ensureRegistered(node.Tree())
	v := c.run(s, key, node, pk.Options)
	memo.Memoize(pk, v)
	return v
}

func (c *Computer) computeWithResultOption(s *Session, key *Key, cls ast.Node, ro ResultOption, opts Options) float64 {
	opKey := key.OperationKey()
	if opKey == nil {
		return NotSupported
	}
	var values []float64
	for _, op := range ast.ContainedOperations(cls) {
		if !opKey.Supports(op) {
			continue
		}
		v := c.Compute(s, opKey, op, ResultNone, opts)
		if IsSupported(v) {
			values = append(values, v)
		}
	}
	return reduce(values, ro)
}

// run invokes the strategy. A panicking strategy produces NaN for the node.
func (c *Computer) run(s *Session, key *Key, node ast.Node, opts Options) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("Metric computation panicked",
				zap.String("metric", key.Name()),
				zap.String("node", node.String()),
				zap.String("file", node.Tree().Path()),
				zap.String("panic", fmt.Sprint(r)))
			v = NotSupported
		}
	}()
	return key.Metric().Compute(node, s, opts)
}
