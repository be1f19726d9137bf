package util

import (
	"context"
	"testing"

	"codemetrics/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLanguageMatch(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		language string
		expected bool
	}{
		// Go
		{"Go file", "/path/to/file.go", "go", true},
		{"Go file uppercase", "/path/to/file.GO", "go", true},

		// Python
		{"Python file", "/path/to/file.py", "python", true},
		{"Python interface file", "/path/to/file.pyi", "python", true},
		{"Python extension", "/path/to/file.pyx", "python", true},

		// JavaScript variants
		{"JavaScript file", "/path/to/file.js", "javascript", true},
		{"JSX file", "/path/to/component.jsx", "javascript", true},
		{"MJS file", "/path/to/module.mjs", "javascript", true},
		{"CJS file", "/path/to/common.cjs", "javascript", true},

		// TypeScript variants
		{"TypeScript file", "/path/to/file.ts", "typescript", true},
		{"TSX file", "/path/to/component.tsx", "typescript", true},
		{"MTS file", "/path/to/module.mts", "typescript", true},
		{"CTS file", "/path/to/common.cts", "typescript", true},

		// Java
		{"Java file", "/path/to/Circle.java", "java", true},
		{"Java language case", "/path/to/Circle.java", "Java", true},

		// Negative cases
		{"Wrong language", "/path/to/file.py", "go", false},
		{"No extension", "/path/to/README", "go", false},
		{"Different extension", "/path/to/file.txt", "go", false},
		{"Unknown language", "/path/to/style.css", "css", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isLanguageMatch(tt.filePath, tt.language)
			if result != tt.expected {
				t.Errorf("isLanguageMatch(%q, %q) = %v, want %v", tt.filePath, tt.language, result, tt.expected)
			}
		})
	}
}

func TestShouldSkipFile_WithLanguageFilter(t *testing.T) {
	tests := []struct {
		name        string
		filePath    string
		repo        *config.Repository
		shouldSkip  bool
		description string
	}{
		{
			name:     "Go repo, Go file, skip enabled",
			filePath: "/repo/main.go",
			repo: &config.Repository{
				Language:           "go",
				SkipOtherLanguages: true,
			},
			shouldSkip:  false,
			description: "Should process Go files in Go repo",
		},
		{
			name:     "Go repo, Python file, skip enabled",
			filePath: "/repo/script.py",
			repo: &config.Repository{
				Language:           "go",
				SkipOtherLanguages: true,
			},
			shouldSkip:  true,
			description: "Should skip Python files in Go repo when SkipOtherLanguages is true",
		},
		{
			name:     "Go repo, Python file, skip disabled",
			filePath: "/repo/script.py",
			repo: &config.Repository{
				Language:           "go",
				SkipOtherLanguages: false,
			},
			shouldSkip:  false,
			description: "Should process Python files in Go repo when SkipOtherLanguages is false",
		},
		{
			name:     "JavaScript repo, JSX file, skip enabled",
			filePath: "/repo/Component.jsx",
			repo: &config.Repository{
				Language:           "javascript",
				SkipOtherLanguages: true,
			},
			shouldSkip:  false,
			description: "Should process JSX files in JavaScript repo (variant)",
		},
		{
			name:     "TypeScript repo, TSX file, skip enabled",
			filePath: "/repo/Component.tsx",
			repo: &config.Repository{
				Language:           "typescript",
				SkipOtherLanguages: true,
			},
			shouldSkip:  false,
			description: "Should process TSX files in TypeScript repo (variant)",
		},
		{
			name:     "Java repo, Java file, skip enabled",
			filePath: "/repo/src/main/java/com/acme/Circle.java",
			repo: &config.Repository{
				Language:           "java",
				SkipOtherLanguages: true,
			},
			shouldSkip:  false,
			description: "Should process Java files in Java repo",
		},
		{
			name:     "Generated protobuf file skipped",
			filePath: "/repo/api/service.pb.go",
			repo: &config.Repository{
				Language: "go",
			},
			shouldSkip:  true,
			description: "Should skip generated sources",
		},
		{
			name:        "Type declaration file skipped",
			filePath:    "/repo/types/index.d.ts",
			repo:        nil,
			shouldSkip:  true,
			description: "Should skip TypeScript declaration files",
		},
		{
			name:        "No repo config",
			filePath:    "/repo/main.go",
			repo:        nil,
			shouldSkip:  false,
			description: "Should process all files when repo is nil",
		},
		{
			name:     "Dockerfile always skipped",
			filePath: "/repo/Dockerfile",
			repo: &config.Repository{
				Language:           "go",
				SkipOtherLanguages: true,
			},
			shouldSkip:  true,
			description: "Should skip Dockerfile regardless of language settings",
		},
		{
			name:     "bin directory file skipped",
			filePath: "/repo/bin/metrics",
			repo: &config.Repository{
				Language:           "go",
				SkipOtherLanguages: true,
			},
			shouldSkip:  true,
			description: "Should skip files in bin directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ShouldSkipFile(tt.filePath, tt.repo)
			if result != tt.shouldSkip {
				t.Errorf("ShouldSkipFile(%q, repo) = %v, want %v - %s", tt.filePath, result, tt.shouldSkip, tt.description)
			}
		})
	}
}

func TestShouldSkipDirectory(t *testing.T) {
	tests := []struct {
		path string
		skip bool
	}{
		{"/repo/node_modules", true},
		{"/repo/.git", true},
		{"/repo/.hidden", true},
		{"/repo/__pycache__", true},
		{"/repo/src", false},
		{".", false},
		{"/repo/internal", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.skip, ShouldSkipDirectory(tt.path), tt.path)
	}
}

func TestToRelativePath(t *testing.T) {
	assert.Equal(t, "src/a.go", ToRelativePath("/repo", "/repo/src/a.go"))
	assert.Equal(t, "relative/b.go", ToRelativePath("/repo", "relative/b.go"))
}

func TestCalculateFileSHA256(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		CalculateFileSHA256(nil))
	assert.NotEqual(t, CalculateFileSHA256([]byte("a")), CalculateFileSHA256([]byte("b")))
}

func TestGetGitInfoOutsideRepository(t *testing.T) {
	info, err := GetGitInfo(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, info.IsGitRepo)
	assert.True(t, IsFileModified(info, "any/file.go"))
	assert.True(t, IsFileModified(nil, "any/file.go"))
}

func TestIsFileModified(t *testing.T) {
	info := &GitInfo{IsGitRepo: true, ModifiedFiles: map[string]bool{"src/a.go": true}}
	assert.True(t, IsFileModified(info, "src/a.go"))
	assert.False(t, IsFileModified(info, "src/b.go"))
}

func TestIgnoreMatcher(t *testing.T) {
	m := NewIgnoreMatcher("build/", "*.gen.go", "!keep.gen.go")
	assert.True(t, m.Matches("build/"))
	assert.True(t, m.Matches("pkg/api.gen.go"))
	assert.False(t, m.Matches("pkg/keep.gen.go"))
	assert.False(t, m.Matches("pkg/api.go"))

	var none *IgnoreMatcher
	assert.False(t, none.Matches("anything"))
	assert.False(t, LoadGitignore(t.TempDir()).Matches("anything"))
}
