// Package mirror keeps a project-wide index of every class, operation and
// field signature seen in the analysed trees. Metrics use it to answer
// questions about declarations that live in other files.
package mirror

import (
	"sync"

	"codemetrics/internal/ast"
	"codemetrics/internal/signature"
)

type ProjectMirror struct {
	mu   sync.RWMutex
	root *PackageStats
}

func NewProjectMirror() *ProjectMirror {
	return &ProjectMirror{root: newPackageStats("")}
}

// Reset drops every registered declaration.
func (m *ProjectMirror) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = newPackageStats("")
}

func (m *ProjectMirror) rootPackage() *PackageStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// Register records every class, operation and field of tree.
func (m *ProjectMirror) Register(tree *ast.Tree, detector *signature.Detector) {
	if tree == nil {
		return
	}
	for _, cls := range ast.Classes(tree) {
		q, ok := cls.QualifiedName()
		if !ok {
			continue
		}
		cs := m.classStats(q, true)
		for _, field := range ast.ContainedFields(cls) {
			cs.AddField(field.Name(), signature.FieldSignatureOf(field))
		}
	}
	for _, op := range ast.Operations(tree) {
		q, ok := op.QualifiedName()
		if !ok {
			continue
		}
		if cs := m.classStats(q.ClassName(), true); cs != nil {
			cs.AddOperation(q, detector.OperationSignatureOf(op))
		}
	}
}

// Class returns the stats of a class, creating it and its packages when
// missing. Front-ends and tests use it to describe declarations by hand.
func (m *ProjectMirror) Class(q ast.QualifiedName) *ClassStats {
	return m.classStats(q, true)
}

func (m *ProjectMirror) classStats(q ast.QualifiedName, create bool) *ClassStats {
	pkg := m.rootPackage().subPackage(q.Packages, create)
	if pkg == nil {
		return nil
	}
	if len(q.Classes) == 0 {
		return pkg.packageFunctions(create)
	}
	cs := pkg.class(q.Classes[0], create)
	for _, name := range q.Classes[1:] {
		if cs == nil {
			return nil
		}
		cs = cs.nestedClass(name, create)
	}
	return cs
}

// ClassStats looks up a class by qualified name. A malformed or unknown name
// yields false.
func (m *ProjectMirror) ClassStats(qualifiedName string) (*ClassStats, bool) {
	q, err := ast.ParseQualifiedName(qualifiedName)
	if err != nil {
		return nil, false
	}
	return m.FindClass(q)
}

// FindClass is ClassStats for an already parsed name. The operation part is
// ignored.
func (m *ProjectMirror) FindClass(q ast.QualifiedName) (*ClassStats, bool) {
	cs := m.classStats(q.ClassName(), false)
	return cs, cs != nil
}

// HasMatchingSignature resolves the operation named by qualifiedName and
// tests its signature against mask. Any lookup failure yields false.
func (m *ProjectMirror) HasMatchingSignature(qualifiedName string, mask *signature.OperationMask) bool {
	q, err := ast.ParseQualifiedName(qualifiedName)
	if err != nil {
		return false
	}
	return m.HasMatchingSignatureFor(q, mask)
}

// HasMatchingSignatureFor is HasMatchingSignature for an already parsed name.
func (m *ProjectMirror) HasMatchingSignatureFor(q ast.QualifiedName, mask *signature.OperationMask) bool {
	if !q.IsOperation() {
		return false
	}
	cs, ok := m.FindClass(q)
	if !ok {
		return false
	}
	return cs.HasMatchingSignature(q, mask)
}

// HasMatchingFieldSignature tests the field of a class against mask.
func (m *ProjectMirror) HasMatchingFieldSignature(classQualifiedName, field string, mask *signature.FieldMask) bool {
	q, err := ast.ParseQualifiedName(classQualifiedName)
	if err != nil {
		return false
	}
	return m.HasMatchingFieldSignatureFor(q, field, mask)
}

func (m *ProjectMirror) HasMatchingFieldSignatureFor(class ast.QualifiedName, field string, mask *signature.FieldMask) bool {
	cs, ok := m.FindClass(class)
	if !ok {
		return false
	}
	return cs.HasMatchingFieldSignature(field, mask)
}

// Package returns the stats of a package given its segments.
func (m *ProjectMirror) Package(segments []string) (*PackageStats, bool) {
	p := m.rootPackage().subPackage(segments, false)
	return p, p != nil
}
