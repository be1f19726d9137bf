package util

import (
	"path/filepath"
	"strings"

	"codemetrics/internal/config"
)

func ToRelativePath(rootPath, fullPath string) string {
	relPath, err := filepath.Rel(rootPath, fullPath)
	if err != nil {
		return fullPath
	}
	return filepath.ToSlash(relPath)
}

func Ptr[T any](v T) *T { return &v }

var skipDirs = map[string]bool{
	".git": true, "node_modules": true, ".vscode": true, ".idea": true,
	"vendor": true, "target": true, "build": true, "dist": true, "out": true,
	"__pycache__": true, ".pytest_cache": true, ".mypy_cache": true, ".tox": true,
	"venv": true, ".venv": true, "coverage": true, "site-packages": true,
	".next": true, ".nuxt": true, ".cache": true, ".gradle": true,
}

// ShouldSkipDirectory checks if a directory should be skipped during traversal
func ShouldSkipDirectory(path string) bool {
	baseName := filepath.Base(path)
	if skipDirs[baseName] {
		return true
	}

	// Skip hidden directories (starting with .)
	return len(baseName) > 1 && baseName[0] == '.' && baseName != ".."
}

var languageExtensions = map[string][]string{
	"go":         {".go"},
	"java":       {".java"},
	"python":     {".py", ".pyi", ".pyx"},
	"javascript": {".js", ".jsx", ".mjs", ".cjs"},
	"typescript": {".ts", ".tsx", ".mts", ".cts"},
}

// isLanguageMatch reports whether the file extension belongs to language.
func isLanguageMatch(filePath, language string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, e := range languageExtensions[strings.ToLower(language)] {
		if ext == e {
			return true
		}
	}
	return false
}

// generated sources carry no design information worth measuring
var skipFileSuffixes = []string{
	".min.js", ".bundle.js", ".d.ts", ".pb.go", "_pb2.py", "_generated.go",
}

var skipPathSegments = []string{
	"/node_modules/", "/vendor/", "/target/", "/build/", "/dist/",
	"/__pycache__/", "/site-packages/", "/bin/", "/obj/", "/.git/",
}

// ShouldSkipFile checks if a file should be left out of the analysis. When
// repo asks for it, files of other languages are skipped too.
func ShouldSkipFile(filePath string, repo *config.Repository) bool {
	lowerBase := strings.ToLower(filepath.Base(filePath))
	for _, suffix := range skipFileSuffixes {
		if strings.HasSuffix(lowerBase, suffix) {
			return true
		}
	}
	if lowerBase == "dockerfile" || lowerBase == "makefile" {
		return true
	}

	normalizedPath := filepath.ToSlash(filepath.Clean(filePath))
	for _, segment := range skipPathSegments {
		if strings.Contains(normalizedPath, segment) {
			return true
		}
	}

	if repo != nil && repo.SkipOtherLanguages && repo.Language != "" {
		return !isLanguageMatch(filePath, repo.Language)
	}
	return false
}
