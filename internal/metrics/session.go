// Package metrics is the entry point of metric computation. A Session owns
// the project mirror and the per-node caches; rules ask it for values through
// Get and GetWithResult.
package metrics

import (
	"sync"

	"codemetrics/internal/ast"
	"codemetrics/internal/metrics/mirror"
	"codemetrics/internal/signature"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is safe for concurrent use. Strategies may call back into the
// session; no session lock is held while a strategy runs.
type Session struct {
	id       string
	logger   *zap.Logger
	detector *signature.Detector
	computer *Computer

	mu         sync.RWMutex
	mirror     *mirror.ProjectMirror
	memos      map[*ast.Tree]*MemoTable
	registered map[*ast.Tree]bool
}

func NewSession(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	return &Session{
		id:         id,
		logger:     logger.With(zap.String("session", id)),
		detector:   signature.NewDetector(),
		computer:   NewComputer(logger),
		mirror:     mirror.NewProjectMirror(),
		memos:      make(map[*ast.Tree]*MemoTable),
		registered: make(map[*ast.Tree]bool),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Logger() *zap.Logger { return s.logger }

func (s *Session) Detector() *signature.Detector { return s.detector }

// Mirror returns the current project mirror. Reset replaces it.
func (s *Session) Mirror() *mirror.ProjectMirror {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mirror
}

// Register adds the declarations of tree to the mirror. Registering a tree
// twice has no effect.
func (s *Session) Register(tree *ast.Tree) {
	if tree == nil {
		return
	}
	s.mu.Lock()
	if s.registered[tree] {
		s.mu.Unlock()
		return
	}
	s.registered[tree] = true
	m := s.mirror
	s.mu.Unlock()

	m.Register(tree, s.detector)
	s.logger.Debug("Registered tree", zap.String("file", tree.Path()))
}

func (s *Session) ensureRegistered(tree *ast.Tree) {
	s.mu.RLock()
	done := s.registered[tree]
	s.mu.RUnlock()
	if !done {
		s.Register(tree)
	}
}

// Release drops the cached values of tree. Its declarations stay in the
// mirror.
func (s *Session) Release(tree *ast.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memos, tree)
}

// Reset discards the mirror, all registrations and all cached values.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirror = mirror.NewProjectMirror()
	s.memos = make(map[*ast.Tree]*MemoTable)
	s.registered = make(map[*ast.Tree]bool)
	s.logger.Debug("Session reset")
}

func (s *Session) memoizer(node ast.Node) Memoizer {
	tree := node.Tree()
	s.mu.RLock()
	table, ok := s.memos[tree]
	s.mu.RUnlock()
	if !ok {
		s.mu.Lock()
		if table, ok = s.memos[tree]; !ok {
			table = NewMemoTable(tree)
			s.memos[tree] = table
		}
		s.mu.Unlock()
	}
	return table.For(node)
}

// Get computes key on node with the standard result option. It returns NaN
// when the key does not support the node.
func (s *Session) Get(key *Key, node ast.Node, opts ...Option) float64 {
	return s.computer.Compute(s, key, node, ResultNone, NewOptions(opts...))
}

// GetWithResult computes key on node. On class-like nodes, a result option
// other than ResultNone aggregates the operation metric over the class's
// operations. Operation nodes ignore the result option.
func (s *Session) GetWithResult(key *Key, node ast.Node, ro ResultOption, opts ...Option) float64 {
	if node.Kind().IsOperationLike() {
		ro = ResultNone
	}
	return s.computer.Compute(s, key, node, ro, NewOptions(opts...))
}
