package rule

import (
	"context"
	"testing"

	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
	"codemetrics/internal/metrics/complexity"
	"codemetrics/internal/property"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// branchyTree declares class Branchy whose i-th method holds branches[i] if
// statements. Method i spans lines 10*(i+1) to 10*(i+1)+9.
func branchyTree(branches ...int) *ast.Tree {
	b := ast.NewBuilder("Branchy.java", "java")
	b.SetPackage("demo")
	cls := b.Add(b.Root(), ast.KindClass, "Branchy")
	b.SetLines(cls, 1, 10*(len(branches)+1))
	for i, n := range branches {
		op := b.Add(cls, ast.KindMethod, string(rune('a'+i)))
		b.SetLines(op, 10*(i+1), 10*(i+1)+9)
		b.AddModifiers(op, ast.ModPublic)
		body := b.Add(op, ast.KindBlock, "")
		for j := 0; j < n; j++ {
			b.Add(body, ast.KindIf, "")
		}
	}
	return b.Build()
}

func TestCyclomaticComplexityRule(t *testing.T) {
	s := metrics.NewSession(zaptest.NewLogger(t))
	tree := branchyTree(11, 26)

	r := NewCyclomaticComplexityRule()
	require.NoError(t, r.Configure(map[string]string{
		"classReportLevel":  "30",
		"methodReportLevel": "10",
	}))
	vs := r.Apply(context.Background(), s, tree)
	require.Len(t, vs, 3)

	assert.Equal(t, "CyclomaticComplexity", vs[0].Rule)
	assert.Equal(t, 39.0, vs[0].Value)
	assert.Equal(t, "The class 'Branchy' has a total cyclomatic complexity of 39 (highest 27).", vs[0].Message)
	assert.Equal(t, "demo.Branchy", vs[0].QualifiedName)

	assert.Equal(t, "The method 'a' has a cyclomatic complexity of 12.", vs[1].Message)
	assert.Equal(t, "demo.Branchy#a()", vs[1].QualifiedName)
	assert.Equal(t, 10, vs[1].BeginLine)
	assert.Equal(t, 19, vs[1].EndLine)
	assert.Equal(t, 27.0, vs[2].Value)

	// the rule and a direct query share one cached value
	assert.Equal(t, 27.0, s.Get(complexity.Cyclo, ast.Operations(tree)[1]))
}

func TestCyclomaticComplexityRuleDefaults(t *testing.T) {
	s := metrics.NewSession(zaptest.NewLogger(t))
	vs := NewCyclomaticComplexityRule().Apply(context.Background(), s, branchyTree(3, 8))
	assert.Empty(t, vs)

	vs = NewCyclomaticComplexityRule().Apply(context.Background(), s, branchyTree(3, 9, 20))
	require.Len(t, vs, 2)
	assert.Contains(t, vs[0].Message, "'b'")
	assert.Contains(t, vs[1].Message, "'c'")
}

func TestCyclomaticComplexityRuleConfigureErrors(t *testing.T) {
	r := NewCyclomaticComplexityRule()
	assert.ErrorIs(t, r.Configure(map[string]string{"classReportLevel": "0"}), property.ErrOutOfRange)
	assert.ErrorIs(t, r.Configure(map[string]string{"methodReportLevel": "ten"}), property.ErrInvalidValue)
	assert.ErrorIs(t, r.Configure(map[string]string{"cycloOptions": "ignoreEverything"}), property.ErrInvalidValue)
	assert.NoError(t, r.Configure(map[string]string{"cycloOptions": "ignoreBooleanPaths"}))
}

func TestNcssCountRule(t *testing.T) {
	s := metrics.NewSession(zaptest.NewLogger(t))
	tree := branchyTree(11, 26, 2)

	vs := NewNcssCountRule().Apply(context.Background(), s, tree)
	require.Len(t, vs, 2)
	assert.Equal(t, "The method 'a' has a NCSS line count of 12.", vs[0].Message)
	assert.Equal(t, 27.0, vs[1].Value)

	r := NewNcssCountRule()
	require.NoError(t, r.Configure(map[string]string{"classReportLevel": "40"}))
	vs = r.Apply(context.Background(), s, tree)
	require.Len(t, vs, 3)
	// 1 class + 3 methods + 39 statements
	assert.Equal(t, "The class 'Branchy' has a NCSS line count of 43 (highest 27).", vs[0].Message)
}

func TestAccessToForeignDataRule(t *testing.T) {
	s := metrics.NewSession(zaptest.NewLogger(t))

	pb := ast.NewBuilder("A.java", "java")
	pb.SetPackage("p")
	a := pb.Add(pb.Root(), ast.KindClass, "A")
	get := pb.Add(a, ast.KindMethod, "getValue")
	pb.AddModifiers(get, ast.ModPublic)
	s.Register(pb.Build())

	cb := ast.NewBuilder("B.java", "java")
	cb.SetPackage("p")
	cls := cb.Add(cb.Root(), ast.KindClass, "B")
	heavy := cb.Add(cls, ast.KindMethod, "heavy")
	for _, target := range []string{"p.A#getValue()", "p.A#getValue()", "p.B#light()"} {
		cb.SetTarget(cb.Add(heavy, ast.KindCall, ""), target)
	}
	light := cb.Add(cls, ast.KindMethod, "light")
	cb.SetTarget(cb.Add(light, ast.KindCall, ""), "p.B#heavy()")
	tree := cb.Build()

	vs := NewAccessToForeignDataRule().Apply(context.Background(), s, tree)
	require.Len(t, vs, 2)
	assert.Equal(t, "p.B#heavy()", vs[0].QualifiedName)
	assert.InDelta(t, 2.0/3.0, vs[0].Value, 1e-9)
	assert.Equal(t, "p.B", vs[1].QualifiedName)
	assert.Equal(t, 0.5, vs[1].Value)

	r := NewAccessToForeignDataRule()
	require.NoError(t, r.Configure(map[string]string{"reportLevel": "0.7"}))
	assert.Empty(t, r.Apply(context.Background(), s, tree))
	assert.ErrorIs(t, r.Configure(map[string]string{"reportLevel": "2"}), property.ErrOutOfRange)
}

func TestMetricRule(t *testing.T) {
	s := metrics.NewSession(zaptest.NewLogger(t))
	tree := branchyTree(1, 5)

	r := NewMetricRule("LongCode", "LOC", "LOC")
	require.NoError(t, r.Configure(map[string]string{"reportLevel": "10"}))
	vs := r.Apply(context.Background(), s, tree)
	require.Len(t, vs, 3)
	assert.Equal(t, "The class 'Branchy' has a LOC of 30.", vs[0].Message)
	assert.Equal(t, "The method 'a' has a LOC of 10.", vs[1].Message)

	require.NoError(t, r.Configure(map[string]string{
		"reportLevel":   "15",
		"resultOption":  "sum",
		"reportMethods": "false",
	}))
	vs = r.Apply(context.Background(), s, tree)
	require.Len(t, vs, 1)
	assert.Equal(t, 20.0, vs[0].Value)

	assert.ErrorIs(t, r.Configure(map[string]string{"resultOption": "median"}), metrics.ErrUnknownResultOption)
}

func TestMetricRuleUnknownMetricOrLanguage(t *testing.T) {
	s := metrics.NewSession(zaptest.NewLogger(t))
	assert.Empty(t, NewMetricRule("Nothing", "NOPE", "NOPE").Apply(context.Background(), s, branchyTree(1)))

	b := ast.NewBuilder("main.cob", "cobol")
	b.Add(b.Root(), ast.KindClass, "X")
	assert.Empty(t, NewMetricRule("LongCode", "LOC", "LOC").Apply(context.Background(), s, b.Build()))
}

func TestApplyStopsWhenCancelled(t *testing.T) {
	s := metrics.NewSession(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, NewCyclomaticComplexityRule().Apply(ctx, s, branchyTree(60)))
}

func TestNew(t *testing.T) {
	for _, name := range BuiltinNames() {
		r, err := New(name, "", "")
		require.NoError(t, err)
		assert.Equal(t, name, r.Name())
	}

	r, err := New("Custom", "WMC", "")
	require.NoError(t, err)
	assert.IsType(t, &MetricRule{}, r)

	_, err = New("Missing", "", "")
	assert.ErrorIs(t, err, ErrUnknownRule)
	assert.Len(t, Defaults(), 3)
}

func TestSortViolations(t *testing.T) {
	vs := []Violation{
		{Rule: "B", File: "b.go", BeginLine: 1},
		{Rule: "B", File: "a.go", BeginLine: 9},
		{Rule: "A", File: "a.go", BeginLine: 9},
		{Rule: "Z", File: "a.go", BeginLine: 2},
	}
	SortViolations(vs)
	assert.Equal(t, []string{"Z", "A", "B", "B"}, []string{vs[0].Rule, vs[1].Rule, vs[2].Rule, vs[3].Rule})
	assert.Equal(t, "b.go", vs[3].File)
}

func TestKindLabel(t *testing.T) {
	b := ast.NewBuilder("main.go", "go")
	fn := b.Add(b.Root(), ast.KindMethod, "main")
	cls := b.Add(b.Root(), ast.KindInterface, "Reader")
	tree := b.Build()
	assert.Equal(t, "function", kindLabel(tree.Node(fn)))
	assert.Equal(t, "interface", kindLabel(tree.Node(cls)))
}
