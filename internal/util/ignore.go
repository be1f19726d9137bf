package util

import (
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreMatcher reports whether a path relative to the repository root is
// excluded by the root .gitignore.
type IgnoreMatcher struct {
	gi *ignore.GitIgnore
}

// LoadGitignore compiles root/.gitignore. A missing or unreadable file gives
// a matcher that ignores nothing.
func LoadGitignore(root string) *IgnoreMatcher {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return &IgnoreMatcher{}
	}
	return &IgnoreMatcher{gi: gi}
}

// NewIgnoreMatcher compiles gitignore lines, mainly for tests.
func NewIgnoreMatcher(lines ...string) *IgnoreMatcher {
	return &IgnoreMatcher{gi: ignore.CompileIgnoreLines(lines...)}
}

func (m *IgnoreMatcher) Matches(relPath string) bool {
	if m == nil || m.gi == nil {
		return false
	}
	return m.gi.MatchesPath(filepath.ToSlash(relPath))
}
