package metrics

import (
	"fmt"

	"codemetrics/internal/ast"
)

// Category tells which kind of node a key measures.
type Category string

const (
	CategoryClass     Category = "class"
	CategoryOperation Category = "operation"
)

// Metric is the strategy behind a key. Compute is only called for nodes that
// Supports accepted. It may query other metrics through the session and must
// return NaN rather than fail when it cannot produce a value.
type Metric interface {
	Supports(node ast.Node) bool
	Compute(node ast.Node, s *Session, opts Options) float64
}

// MetricFunc adapts plain functions to Metric. A nil SupportsFn accepts every
// node of the key's category.
type MetricFunc struct {
	SupportsFn func(node ast.Node) bool
	ComputeFn  func(node ast.Node, s *Session, opts Options) float64
}

func (f MetricFunc) Supports(node ast.Node) bool {
	return f.SupportsFn == nil || f.SupportsFn(node)
}

func (f MetricFunc) Compute(node ast.Node, s *Session, opts Options) float64 {
	return f.ComputeFn(node, s, opts)
}

// Metadata describes a metric for reports and listings.
type Metadata struct {
	FullName    string // e.g., "Weighted Method Count"
	Description string
	Unit        string // e.g., "paths", "lines", "ratio"
	LowerBetter bool
}

// Key is the identity of a metric. Keys are created once and compared by
// pointer.
type Key struct {
	name     string
	category Category
	metric   Metric
	declared map[Option]bool
	opKey    *Key
	meta     Metadata
}

// NewOperationKey creates a key measuring operations. declared lists the
// options the metric understands; others are ignored.
func NewOperationKey(name string, m Metric, meta Metadata, declared ...Option) *Key {
	return newKey(name, CategoryOperation, m, nil, meta, declared)
}

// NewClassKey creates a key measuring classes. opKey, when not nil, is the
// operation metric used when a class value is obtained by reduction.
func NewClassKey(name string, m Metric, opKey *Key, meta Metadata, declared ...Option) *Key {
	return newKey(name, CategoryClass, m, opKey, meta, declared)
}

func newKey(name string, cat Category, m Metric, opKey *Key, meta Metadata, declared []Option) *Key {
	k := &Key{
		name:     name,
		category: cat,
		metric:   m,
		declared: make(map[Option]bool, len(declared)),
		opKey:    opKey,
		meta:     meta,
	}
	for _, o := range declared {
		k.declared[o] = true
	}
	return k
}

func (k *Key) Name() string       { return k.name }
func (k *Key) Category() Category { return k.category }
func (k *Key) Metric() Metric     { return k.metric }
func (k *Key) Metadata() Metadata { return k.meta }

// OperationKey returns the key itself for operation keys and the paired
// operation key for class keys, which may be nil.
func (k *Key) OperationKey() *Key {
	if k.category == CategoryOperation {
		return k
	}
	return k.opKey
}

func (k *Key) DeclaredOptions() []Option {
	out := make([]Option, 0, len(k.declared))
	for o := range k.declared {
		out = append(out, o)
	}
	return NewOptions(out...).List()
}

// Supports checks the node kind against the category, then asks the metric.
func (k *Key) Supports(node ast.Node) bool {
	if k == nil || k.metric == nil || !node.IsValid() {
		return false
	}
	switch k.category {
	case CategoryClass:
		if !node.Kind().IsClassLike() {
			return false
		}
	case CategoryOperation:
		if !node.Kind().IsOperationLike() {
			return false
		}
	}
	return k.metric.Supports(node)
}

// Filter keeps only the options declared by the key.
func (k *Key) Filter(opts Options) Options {
	var kept []Option
	for _, o := range opts.List() {
		if k.declared[o] {
			kept = append(kept, o)
		}
	}
	return NewOptions(kept...)
}

func (k *Key) String() string {
	return fmt.Sprintf("%s(%s)", k.name, k.category)
}
