package mirror

import (
	"strconv"
	"sync"

	"codemetrics/internal/ast"
	"codemetrics/internal/signature"
)

// PackageStats mirrors one package segment: its sub-packages, its classes
// and the free functions declared directly in it.
type PackageStats struct {
	mu          sync.RWMutex
	name        string
	subPackages map[string]*PackageStats
	classes     map[string]*ClassStats
	functions   *ClassStats
}

func newPackageStats(name string) *PackageStats {
	return &PackageStats{
		name:        name,
		subPackages: make(map[string]*PackageStats),
		classes:     make(map[string]*ClassStats),
	}
}

func (p *PackageStats) Name() string { return p.name }

func (p *PackageStats) SubPackage(name string) (*PackageStats, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sub, ok := p.subPackages[name]
	return sub, ok
}

func (p *PackageStats) Class(name string) (*ClassStats, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.classes[name]
	return c, ok
}

// Functions returns the stats of package level operations, if any exist.
func (p *PackageStats) Functions() (*ClassStats, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.functions, p.functions != nil
}

// subPackage descends recursively through segments. With create set, missing
// packages are added on the way.
func (p *PackageStats) subPackage(segments []string, create bool) *PackageStats {
	if len(segments) == 0 {
		return p
	}
	p.mu.RLock()
	next, ok := p.subPackages[segments[0]]
	p.mu.RUnlock()
	if !ok {
		if !create {
			return nil
		}
		p.mu.Lock()
		if next, ok = p.subPackages[segments[0]]; !ok {
			next = newPackageStats(segments[0])
			p.subPackages[segments[0]] = next
		}
		p.mu.Unlock()
	}
	return next.subPackage(segments[1:], create)
}

func (p *PackageStats) class(name string, create bool) *ClassStats {
	p.mu.RLock()
	c, ok := p.classes[name]
	p.mu.RUnlock()
	if ok || !create {
		return c
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok = p.classes[name]; !ok {
		c = newClassStats(name)
		p.classes[name] = c
	}
	return c
}

func (p *PackageStats) packageFunctions(create bool) *ClassStats {
	p.mu.RLock()
	f := p.functions
	p.mu.RUnlock()
	if f != nil || !create {
		return f
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.functions == nil {
		p.functions = newClassStats("")
	}
	return p.functions
}

type operationEntry struct {
	params []string
	sig    signature.OperationSignature
}

// ClassStats mirrors a class: nested classes, operation signatures keyed by
// "name(types)" and field signatures keyed by name.
type ClassStats struct {
	mu         sync.RWMutex
	name       string
	nested     map[string]*ClassStats
	operations map[string]operationEntry
	byArity    map[string][]string
	fields     map[string]signature.FieldSignature
}

func newClassStats(name string) *ClassStats {
	return &ClassStats{
		name:       name,
		nested:     make(map[string]*ClassStats),
		operations: make(map[string]operationEntry),
		byArity:    make(map[string][]string),
		fields:     make(map[string]signature.FieldSignature),
	}
}

func (c *ClassStats) Name() string { return c.name }

func (c *ClassStats) NestedClass(name string) (*ClassStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nested[name]
	return n, ok
}

func (c *ClassStats) nestedClass(name string, create bool) *ClassStats {
	c.mu.RLock()
	n, ok := c.nested[name]
	c.mu.RUnlock()
	if ok || !create {
		return n
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok = c.nested[name]; !ok {
		n = newClassStats(name)
		c.nested[name] = n
	}
	return n
}

func arityKey(name string, arity int) string {
	return name + "/" + strconv.Itoa(arity)
}

// AddOperation records the signature of an operation. A later registration
// of the same signature replaces the earlier one.
func (c *ClassStats) AddOperation(q ast.QualifiedName, sig signature.OperationSignature) {
	key := q.Signature()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.operations[key]; !exists {
		ak := arityKey(q.Operation, q.Arity())
		c.byArity[ak] = append(c.byArity[ak], key)
	}
	c.operations[key] = operationEntry{
		params: append([]string(nil), q.Params...),
		sig:    sig,
	}
}

func (c *ClassStats) AddField(name string, sig signature.FieldSignature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields[name] = sig
}

// Operation returns the signature registered under "name(types)".
func (c *ClassStats) Operation(key string) (signature.OperationSignature, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.operations[key]
	return e.sig, ok
}

func (c *ClassStats) Field(name string) (signature.FieldSignature, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.fields[name]
	return f, ok
}

func (c *ClassStats) NumOperations() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.operations)
}

func (c *ClassStats) NumFields() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fields)
}

// HasMatchingSignature reports whether the operation described by q is
// declared here with a signature covered by mask. Unknown parameter types
// match any declared type of the same arity.
func (c *ClassStats) HasMatchingSignature(q ast.QualifiedName, mask *signature.OperationMask) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.operations[q.Signature()]; ok && mask.Covers(e.sig) {
		return true
	}
	for _, key := range c.byArity[arityKey(q.Operation, q.Arity())] {
		e := c.operations[key]
		if paramsMatch(e.params, q.Params) && mask.Covers(e.sig) {
			return true
		}
	}
	return false
}

func (c *ClassStats) HasMatchingFieldSignature(name string, mask *signature.FieldMask) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.fields[name]
	return ok && mask.Covers(f)
}

// CountMatchingOperations counts declared operations covered by mask.
func (c *ClassStats) CountMatchingOperations(mask *signature.OperationMask) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.operations {
		if mask.Covers(e.sig) {
			n++
		}
	}
	return n
}

func (c *ClassStats) CountMatchingFields(mask *signature.FieldMask) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, f := range c.fields {
		if mask.Covers(f) {
			n++
		}
	}
	return n
}

func paramsMatch(declared, wanted []string) bool {
	if len(declared) != len(wanted) {
		return false
	}
	for i := range declared {
		if !ast.SameType(declared[i], wanted[i]) {
			return false
		}
	}
	return true
}
