package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codemetrics/internal/config"
	"codemetrics/internal/property"
	"codemetrics/internal/report"
	"codemetrics/internal/rule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const providerSource = `package p;

public class A {
    private int value;

    public int getValue() {
        return value;
    }
}
`

const clientSource = `package p;

public class B {
    public int heavy() {
        A a = new A();
        return a.getValue() + a.getValue() + light();
    }

    public int light() {
        return 1;
    }
}
`

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func testConfig() *config.Config {
	return &config.Config{App: config.App{NumFileThreads: 2}}
}

func byRule(vs []rule.Violation, name string) []rule.Violation {
	var out []rule.Violation
	for _, v := range vs {
		if v.Rule == name {
			out = append(out, v)
		}
	}
	return out
}

func findMeasurement(ms []report.Measurement, qname, metric string) (report.Measurement, bool) {
	for _, m := range ms {
		if m.QualifiedName == qname && m.Metric == metric {
			return m, true
		}
	}
	return report.Measurement{}, false
}

func TestAnalyzeRepositoryAcrossFiles(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"src/p/A.java":                providerSource,
		"src/p/B.java":                clientSource,
		"node_modules/lib/Skipped.js": "function skipped() {}",
		"README.md":                   "# shapes",
		".gitignore":                  "generated/\n*.tmp.java\n",
		"generated/Gen.java":          "package gen;\npublic class Gen {}\n",
		"src/p/Scratch.tmp.java":      "package p;\npublic class Scratch {}\n",
	})

	rules, err := RulesFromConfig([]config.RuleConfig{{Name: "AccessToForeignData"}})
	require.NoError(t, err)

	a := NewAnalyzer(testConfig(), rules, zaptest.NewLogger(t))
	a.SetMeasure(true)
	rep, err := a.AnalyzeRepository(context.Background(), &config.Repository{Name: "shapes", Path: root})
	require.NoError(t, err)

	require.Len(t, rep.Files, 2)
	assert.Equal(t, "src/p/A.java", rep.Files[0].Path)
	assert.Equal(t, "java", rep.Files[0].Language)
	assert.Equal(t, 1, rep.Files[0].Classes)
	assert.Equal(t, 2, rep.Files[1].Operations)
	assert.NotEmpty(t, rep.Files[0].SHA)
	assert.Empty(t, rep.Errors)
	assert.NotEmpty(t, rep.SessionID)

	atfd := byRule(rep.Violations, "AccessToForeignData")
	require.Len(t, atfd, 2)
	assert.Equal(t, "p.B", atfd[0].QualifiedName)
	assert.Equal(t, "p.B#heavy()", atfd[1].QualifiedName)
	assert.InDelta(t, 2.0/3.0, atfd[1].Value, 1e-9)
	assert.Equal(t, "src/p/B.java", atfd[1].File)

	m, ok := findMeasurement(rep.Measurements, "p.A", "LOC")
	require.True(t, ok)
	assert.Equal(t, 7.0, m.Value)
	assert.Equal(t, "class", m.Kind)

	m, ok = findMeasurement(rep.Measurements, "p.A", "NOAM")
	require.True(t, ok)
	assert.Equal(t, 1.0, m.Value)

	m, ok = findMeasurement(rep.Measurements, "p.B#light()", "ATFD")
	require.True(t, ok)
	assert.Equal(t, 0.0, m.Value)
}

func TestAnalyzeSourcesDefaultRules(t *testing.T) {
	var body strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&body, "        if (x > %d) { x++; }\n", i)
	}
	src := "package demo;\n\npublic class Branchy {\n    public int branchy(int x) {\n" +
		body.String() + "        return x;\n    }\n}\n"

	rules, err := RulesFromConfig(nil)
	require.NoError(t, err)

	a := NewAnalyzer(testConfig(), rules, zaptest.NewLogger(t))
	rep, err := a.AnalyzeSources(context.Background(), &config.Repository{Name: "inline"},
		[]Source{{RelativePath: "demo/Branchy.java", Content: []byte(src)}})
	require.NoError(t, err)

	cyclo := byRule(rep.Violations, "CyclomaticComplexity")
	require.Len(t, cyclo, 1)
	assert.Equal(t, "demo.Branchy#branchy(int)", cyclo[0].QualifiedName)
	assert.Equal(t, 11.0, cyclo[0].Value)
	assert.Equal(t, "The method 'branchy' has a cyclomatic complexity of 11.", cyclo[0].Message)
	assert.Empty(t, rep.Measurements)
}

func TestAnalyzeSourcesMixedLanguages(t *testing.T) {
	a := NewAnalyzer(nil, nil, zaptest.NewLogger(t))
	a.SetMeasure(true)
	rep, err := a.AnalyzeSources(context.Background(), &config.Repository{Name: "mixed"}, []Source{
		{RelativePath: "geo/point.go", Content: []byte("package geo\n\ntype Point struct{ X int }\n\nfunc (p Point) GetX() int { return p.X }\n")},
		{RelativePath: "geo/square.py", Content: []byte("class Square:\n    def area(self):\n        return 1\n")},
		{RelativePath: "notes.txt", Content: []byte("not code")},
	})
	require.NoError(t, err)

	require.Len(t, rep.Files, 2)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "notes.txt", rep.Errors[0].Path)

	_, ok := findMeasurement(rep.Measurements, "geo.Point", "NOM")
	assert.True(t, ok)
	_, ok = findMeasurement(rep.Measurements, "geo.square.Square#area()", "CYCLO")
	assert.True(t, ok)
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAnalyzer(testConfig(), rule.Defaults(), zaptest.NewLogger(t))
	_, err := a.AnalyzeSources(ctx, &config.Repository{Name: "cancelled"}, []Source{
		{RelativePath: "p/A.java", Content: []byte(providerSource)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAnalyzeRepositoryErrors(t *testing.T) {
	a := NewAnalyzer(testConfig(), nil, zaptest.NewLogger(t))

	_, err := a.AnalyzeRepository(context.Background(), &config.Repository{Name: "off", Path: t.TempDir(), Disabled: true})
	assert.ErrorIs(t, err, ErrRepositoryDisabled)

	_, err = a.AnalyzeRepository(context.Background(), &config.Repository{Name: "gone", Path: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, ErrNotADirectory)
}

func TestRulesFromConfig(t *testing.T) {
	rules, err := RulesFromConfig(nil)
	require.NoError(t, err)
	assert.Len(t, rules, len(rule.BuiltinNames()))

	rules, err = RulesFromConfig([]config.RuleConfig{
		{Name: "CyclomaticComplexity", Properties: map[string]string{"methodReportLevel": "5"}},
		{Name: "NcssCount", Disabled: true},
		{Name: "LocRule", ClassMetric: "LOC", OperationMetric: "LOC"},
	})
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "CyclomaticComplexity", rules[0].Name())
	assert.Equal(t, "LocRule", rules[1].Name())

	_, err = RulesFromConfig([]config.RuleConfig{{Name: "NoSuchRule"}})
	assert.ErrorIs(t, err, rule.ErrUnknownRule)

	_, err = RulesFromConfig([]config.RuleConfig{
		{Name: "CyclomaticComplexity", Properties: map[string]string{"methodReportLevel": "100"}},
	})
	assert.ErrorIs(t, err, property.ErrOutOfRange)
}

func TestAnalyzeSourcesDollarClassNames(t *testing.T) {
	generated := "package p;\n\npublic class A$Gen {\n    private int v;\n\n    public int getV() {\n        return v;\n    }\n}\n"
	client := "package p;\n\npublic class B {\n    public int use() {\n        A$Gen g = new A$Gen();\n        return g.getV();\n    }\n}\n"

	a := NewAnalyzer(testConfig(), nil, zaptest.NewLogger(t))
	a.SetMeasure(true)
	rep, err := a.AnalyzeSources(context.Background(), &config.Repository{Name: "dollar"}, []Source{
		{RelativePath: "p/A$Gen.java", Content: []byte(generated)},
		{RelativePath: "p/B.java", Content: []byte(client)},
	})
	require.NoError(t, err)
	require.Empty(t, rep.Errors)

	m, ok := findMeasurement(rep.Measurements, `p.A\$Gen`, "NOAM")
	require.True(t, ok)
	assert.Equal(t, 1.0, m.Value)

	m, ok = findMeasurement(rep.Measurements, "p.B#use()", "ATFD")
	require.True(t, ok)
	assert.Equal(t, 1.0, m.Value)
}
