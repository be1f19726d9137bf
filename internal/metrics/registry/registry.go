// Package registry groups the built-in metric keys into closed per-language
// sets.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"codemetrics/internal/metrics"
)

// KeySet manages the keys available for one language
type KeySet struct {
	language  string
	classKeys map[string]*metrics.Key
	opKeys    map[string]*metrics.Key
}

// NewKeySet creates an empty key set
func NewKeySet(language string) *KeySet {
	return &KeySet{
		language:  language,
		classKeys: make(map[string]*metrics.Key),
		opKeys:    make(map[string]*metrics.Key),
	}
}

func (r *KeySet) Language() string { return r.language }

// Register adds a key. Names are unique per category.
func (r *KeySet) Register(key *metrics.Key) error {
	target := r.opKeys
	if key.Category() == metrics.CategoryClass {
		target = r.classKeys
	}
	name := strings.ToUpper(key.Name())
	if _, exists := target[name]; exists {
		return fmt.Errorf("%s key already registered: %s", key.Category(), key.Name())
	}
	target[name] = key
	return nil
}

// ClassKey retrieves a class key by name, case-insensitively
func (r *KeySet) ClassKey(name string) (*metrics.Key, error) {
	if k, ok := r.classKeys[strings.ToUpper(name)]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("%w: class metric %q for %s", metrics.ErrUnknownMetric, name, r.language)
}

// OperationKey retrieves an operation key by name, case-insensitively
func (r *KeySet) OperationKey(name string) (*metrics.Key, error) {
	if k, ok := r.opKeys[strings.ToUpper(name)]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("%w: operation metric %q for %s", metrics.ErrUnknownMetric, name, r.language)
}

// ClassKeys returns all class keys sorted by name
func (r *KeySet) ClassKeys() []*metrics.Key {
	return sortedKeys(r.classKeys)
}

// OperationKeys returns all operation keys sorted by name
func (r *KeySet) OperationKeys() []*metrics.Key {
	return sortedKeys(r.opKeys)
}

func sortedKeys(m map[string]*metrics.Key) []*metrics.Key {
	out := make([]*metrics.Key, 0, len(m))
	for _, k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
