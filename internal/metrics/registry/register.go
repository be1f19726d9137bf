package registry

import (
	"strings"
	"sync"

	"codemetrics/internal/metrics"
	"codemetrics/internal/metrics/complexity"
	"codemetrics/internal/metrics/coupling"
	"codemetrics/internal/metrics/size"
)

// Languages with a built-in key set
var Languages = []string{"go", "java", "javascript", "python", "typescript"}

var (
	once sync.Once
	sets map[string]*KeySet
)

// RegisterDefaultKeys registers all built-in keys with the set
func RegisterDefaultKeys(set *KeySet) {
	// Size metrics
	mustRegister(set, size.OperationLOC, size.ClassLOC)
	mustRegister(set, size.OperationNCSS, size.ClassNCSS)
	mustRegister(set, size.NOM, size.NOAM, size.NOPA)

	// Complexity metrics
	mustRegister(set, complexity.Cyclo, complexity.WMC)

	// Coupling metrics
	mustRegister(set, coupling.OperationATFD, coupling.ClassATFD)
}

func mustRegister(set *KeySet, keys ...*metrics.Key) {
	for _, k := range keys {
		if err := set.Register(k); err != nil {
			panic(err)
		}
	}
}

// ForLanguage returns the key set of a language, or nil when the language
// has none.
func ForLanguage(language string) *KeySet {
	once.Do(func() {
		sets = make(map[string]*KeySet, len(Languages))
		for _, lang := range Languages {
			set := NewKeySet(lang)
			RegisterDefaultKeys(set)
			sets[lang] = set
		}
	})
	return sets[strings.ToLower(language)]
}
