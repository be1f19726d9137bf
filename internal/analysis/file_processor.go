package analysis

import (
	"context"

	"codemetrics/internal/ast"
	"codemetrics/internal/config"
	"codemetrics/internal/metrics"
)

// Source is one file handed to the analyzer
type Source struct {
	RelativePath string
	Content      []byte
}

// FileContext contains metadata about a file being processed
type FileContext struct {
	// RelativePath is the path relative to the repository root
	RelativePath string

	// FileSHA is the SHA256 hash of the file content
	FileSHA string

	// Ephemeral indicates the working copy differs from git HEAD
	Ephemeral bool

	// Tree is the translated syntax tree, already registered with the session
	Tree *ast.Tree
}

// FileProcessor defines the interface for processing individual files
// and performing repository-level post-processing operations
type FileProcessor interface {
	// ProcessFile is called once per parsed file, possibly from several
	// goroutines at once. Every file of the run is registered with s
	// before the first call.
	ProcessFile(ctx context.Context, s *metrics.Session, fileCtx *FileContext) error

	// PostProcess is called once after all files have been processed
	PostProcess(ctx context.Context, repo *config.Repository) error

	// Name returns the name of this processor (for logging purposes)
	Name() string
}
