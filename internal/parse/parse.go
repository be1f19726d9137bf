// Package parse translates source files into ast trees using tree-sitter
// grammars.
package parse

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codemetrics/internal/ast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	"go.uber.org/zap"
)

type LanguageType int

const (
	Go LanguageType = iota
	JavaScript
	TypeScript
	Python
	Java
	Unknown
)

func (lt LanguageType) String() string {
	switch lt {
	case Go:
		return "go"
	case JavaScript:
		return "javascript"
	case TypeScript:
		return "typescript"
	case Python:
		return "python"
	case Java:
		return "java"
	default:
		return "unknown"
	}
}

func NewLanguageTypeFromString(lang string) LanguageType {
	switch strings.ToLower(lang) {
	case "go":
		return Go
	case "javascript":
		return JavaScript
	case "typescript":
		return TypeScript
	case "python":
		return Python
	case "java":
		return Java
	default:
		return Unknown
	}
}

func DetectLanguage(filePath string) LanguageType {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".go":
		return Go
	case ".js", ".jsx", ".mjs", ".cjs":
		return JavaScript
	case ".ts", ".tsx", ".mts", ".cts":
		return TypeScript
	case ".py", ".pyw":
		return Python
	case ".java":
		return Java
	default:
		return Unknown
	}
}

// FileParser owns one tree-sitter parser and is not safe for concurrent use.
// Create one per worker.
type FileParser struct {
	parser         *tree_sitter.Parser
	logger         *zap.Logger
	printParseTree bool
	goModule       string
}

func NewFileParser(logger *zap.Logger, printParseTree bool) *FileParser {
	return &FileParser{
		parser:         tree_sitter.NewParser(),
		logger:         logger,
		printParseTree: printParseTree,
	}
}

// SetGoModule sets the module path stripped from Go import paths.
func (fp *FileParser) SetGoModule(module string) {
	fp.goModule = module
}

func (fp *FileParser) Close() {
	fp.parser.Close()
}

func (fp *FileParser) GetLanguageParser(langType LanguageType, filePath string) (*tree_sitter.Language, error) {
	switch langType {
	case Go:
		return tree_sitter.NewLanguage(golang.Language()), nil
	case JavaScript:
		return tree_sitter.NewLanguage(javascript.Language()), nil
	case TypeScript:
		if strings.EqualFold(filepath.Ext(filePath), ".tsx") {
			return tree_sitter.NewLanguage(typescript.LanguageTSX()), nil
		}
		return tree_sitter.NewLanguage(typescript.LanguageTypescript()), nil
	case Python:
		return tree_sitter.NewLanguage(python.Language()), nil
	case Java:
		return tree_sitter.NewLanguage(java.Language()), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLanguage, langType)
	}
}

func (fp *FileParser) GetLanguageVisitor(langType LanguageType, ts *TranslateFromSyntaxTree, relPath string) (SyntaxTreeVisitor, error) {
	switch langType {
	case Go:
		return NewGoVisitor(fp.logger, ts, fp.goModule), nil
	case Java:
		return NewJavaVisitor(fp.logger, ts), nil
	case Python:
		return NewPythonVisitor(fp.logger, ts), nil
	case JavaScript, TypeScript:
		return NewJavaScriptVisitor(fp.logger, ts, filepath.ToSlash(filepath.Dir(relPath))), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLanguage, langType)
	}
}

// ParseFile reads and translates the file at root/relPath. The tree's path
// is relPath.
func (fp *FileParser) ParseFile(ctx context.Context, root, relPath string) (*ast.Tree, error) {
	content, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", relPath, err)
	}
	return fp.ParseContent(ctx, relPath, content)
}

// ParseContent translates content as the file relPath. The language is
// detected from the extension.
func (fp *FileParser) ParseContent(ctx context.Context, relPath string, content []byte) (*ast.Tree, error) {
	langType := DetectLanguage(relPath)
	if langType == Unknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, relPath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	language, err := fp.GetLanguageParser(langType, relPath)
	if err != nil {
		return nil, err
	}
	if err := fp.parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set parser language: %w", err)
	}
	tsTree := fp.parser.Parse(content, nil)
	if tsTree == nil {
		return nil, fmt.Errorf("%w: %s", ErrParseFailed, relPath)
	}
	defer tsTree.Close()

	rootNode := tsTree.RootNode()
	if rootNode == nil {
		return nil, fmt.Errorf("%w: %s: no root node", ErrParseFailed, relPath)
	}
	if rootNode.HasError() {
		fp.logger.Warn("Syntax errors in file, translating what could be recovered", zap.String("path", relPath))
	}

	builder := ast.NewBuilder(filepath.ToSlash(relPath), langType.String())
	builder.SetPackage(defaultPackage(langType, relPath))
	start, end := rootNode.StartPosition(), rootNode.EndPosition()
	builder.SetRange(builder.Root(), int(start.Row)+1, int(start.Column)+1, int(end.Row)+1, int(end.Column)+1)

	translator := NewTranslateFromSyntaxTree(builder, content, fp.logger)
	visitor, err := fp.GetLanguageVisitor(langType, translator, relPath)
	if err != nil {
		return nil, err
	}
	translator.Visitor = visitor
	visitor.TraverseNode(ctx, rootNode, builder.Root())

	if fp.printParseTree {
		fp.logger.Info("Syntax Tree: " + relPath + "\n" + PrintSyntaxTree(ctx, rootNode, content))
	}
	return builder.Build(), nil
}

// defaultPackage derives the package from the file location. Java declares
// its package in the source, and Go falls back to the package clause for
// files at the root.
func defaultPackage(langType LanguageType, relPath string) string {
	dir := filepath.ToSlash(filepath.Dir(relPath))
	if dir == "." {
		dir = ""
	}
	segments := strings.ReplaceAll(strings.Trim(dir, "/"), "/", ".")
	switch langType {
	case Java:
		return ""
	case Python, JavaScript, TypeScript:
		base := filepath.Base(relPath)
		module := strings.TrimSuffix(base, filepath.Ext(base))
		if module == "__init__" {
			return segments
		}
		if segments == "" {
			return module
		}
		return segments + "." + module
	default:
		return segments
	}
}

// ReadGoModule returns the module path declared in root/go.mod, or "" when
// there is none.
func ReadGoModule(root string) string {
	content, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if rest, ok := strings.CutPrefix(line, "module "); ok {
			return strings.Trim(strings.TrimSpace(rest), "\"")
		}
	}
	return ""
}
