package metrics

import (
	"sync"

	"codemetrics/internal/ast"
)

// Memoizer caches the values computed for one node.
type Memoizer interface {
	// Memo returns the cached value and whether one exists. A stored NaN is
	// reported as present.
	Memo(pk ParameterizedKey) (float64, bool)
	Memoize(pk ParameterizedKey, value float64)
}

// BasicMemoizer is an unbounded map guarded by a RWMutex.
type BasicMemoizer struct {
	mu     sync.RWMutex
	values map[ParameterizedKey]float64
}

func NewBasicMemoizer() *BasicMemoizer {
	return &BasicMemoizer{values: make(map[ParameterizedKey]float64)}
}

func (m *BasicMemoizer) Memo(pk ParameterizedKey) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[pk]
	return v, ok
}

func (m *BasicMemoizer) Memoize(pk ParameterizedKey, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[pk] = value
}

// Len is the number of cached values.
func (m *BasicMemoizer) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

type dummyMemoizer struct{}

func (dummyMemoizer) Memo(ParameterizedKey) (float64, bool) { return 0, false }
func (dummyMemoizer) Memoize(ParameterizedKey, float64)     {}

// DummyMemoizer never stores anything.
var DummyMemoizer Memoizer = dummyMemoizer{}

// MemoTable holds the memoizers of one tree, indexed by node id. Memoizers
// are created on first use; nodes that are neither class-like nor
// operation-like share DummyMemoizer.
type MemoTable struct {
	mu    sync.Mutex
	memos []*BasicMemoizer
}

func NewMemoTable(tree *ast.Tree) *MemoTable {
	return &MemoTable{memos: make([]*BasicMemoizer, tree.Len())}
}

func (t *MemoTable) For(node ast.Node) Memoizer {
	k := node.Kind()
	if !k.IsClassLike() && !k.IsOperationLike() {
		return DummyMemoizer
	}
	id := int(node.ID())
	t.mu.Lock()
	defer t.mu.Unlock()
	if id < 0 || id >= len(t.memos) {
		return DummyMemoizer
	}
	if t.memos[id] == nil {
		t.memos[id] = NewBasicMemoizer()
	}
	return t.memos[id]
}
