package parse

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"codemetrics/internal/ast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// PrintVisitor renders the raw tree-sitter tree, one node per line.
type PrintVisitor struct {
	translate *TranslateFromSyntaxTree
	indent    int
	content   strings.Builder
}

func NewPrintVisitor(ts *TranslateFromSyntaxTree) *PrintVisitor {
	return &PrintVisitor{translate: ts}
}

func PrintSyntaxTree(ctx context.Context, tsNode *tree_sitter.Node, content []byte) string {
	ts := &TranslateFromSyntaxTree{FileContent: content}
	pv := NewPrintVisitor(ts)
	ts.Visitor = pv
	pv.TraverseNode(ctx, tsNode, ast.InvalidNodeID)
	return pv.content.String()
}

func (pv *PrintVisitor) TraverseNode(ctx context.Context, tsNode *tree_sitter.Node, parent ast.NodeID) ast.NodeID {
	if tsNode == nil {
		return ast.InvalidNodeID
	}

	pv.content.WriteString(strings.Repeat("  ", pv.indent))
	rangeStr := fmt.Sprintf("[%d:%d - %d:%d]", tsNode.StartPosition().Row, tsNode.StartPosition().Column, tsNode.EndPosition().Row, tsNode.EndPosition().Column)
	fmt.Fprintf(&pv.content, "kind=%s, named=%s, name=%s, range=%s\n",
		tsNode.Kind(), strconv.FormatBool(tsNode.IsNamed()), pv.translate.GetTreeNodeName(tsNode), rangeStr,
	)

	pv.indent += 2
	pv.translate.TraverseChildren(ctx, tsNode, parent)
	pv.indent -= 2
	return ast.InvalidNodeID
}

// PrintTree renders a translated tree with the same layout, which is handy
// when checking how a front-end mapped a file.
func PrintTree(tree *ast.Tree) string {
	var sb strings.Builder
	ast.Walk(tree.Root(), func(n ast.Node) bool {
		depth := 0
		for p := n.Parent(); p.IsValid(); p = p.Parent() {
			depth++
		}
		sb.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(&sb, "kind=%s, name=%s, lines=%d-%d", n.Kind(), n.Name(), n.BeginLine(), n.EndLine())
		if n.Modifiers() != 0 {
			fmt.Fprintf(&sb, ", modifiers=%s", n.Modifiers())
		}
		if n.Target() != "" {
			fmt.Fprintf(&sb, ", target=%s", n.Target())
		}
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}
