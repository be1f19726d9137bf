package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"codemetrics/internal/rule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	r := New("shapes")
	r.Commit = "abc123"
	r.AddFile(FileResult{Path: "src/b.go", Language: "go", Classes: 1, Operations: 2})
	r.AddFile(FileResult{Path: "src/a.go", Language: "go", Classes: 2, Operations: 3})
	r.AddViolations([]rule.Violation{
		{Rule: "NcssCount", Message: "The method 'run' has a NCSS line count of 14.", File: "src/b.go", BeginLine: 4, Value: 14},
		{Rule: "CyclomaticComplexity", Message: "The method 'go' has a cyclomatic complexity of 11.", File: "src/a.go", BeginLine: 9, Value: 11},
	})
	r.AddMeasurements([]Measurement{
		{File: "src/a.go", QualifiedName: "src.A", Kind: "class", Metric: "WMC", Value: 4},
		{File: "src/a.go", QualifiedName: "src.A", Kind: "class", Metric: "LOC", Value: 30},
	})
	r.AddError("src/broken.py", errors.New("parse failed"))
	r.Finish(time.Now())
	return r
}

func TestFinishSorts(t *testing.T) {
	r := sampleReport()

	require.Len(t, r.Files, 2)
	assert.Equal(t, "src/a.go", r.Files[0].Path)
	assert.Equal(t, "src/a.go", r.Violations[0].File)
	assert.Equal(t, "LOC", r.Measurements[0].Metric)
	assert.NotEmpty(t, r.ID)
	assert.NotEmpty(t, r.Duration)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().Write(&buf, "text"))

	out := buf.String()
	assert.Contains(t, out, "for shapes at abc123")
	assert.Contains(t, out, "2 file(s), 2 violation(s), 1 error(s)")
	assert.Contains(t, out, "src/a.go:9: CyclomaticComplexity: The method 'go' has a cyclomatic complexity of 11.")
	assert.Contains(t, out, "src/a.go\tsrc.A\tWMC\t4")
	assert.Contains(t, out, "src/broken.py: parse failed")
	assert.Less(t, strings.Index(out, "src/a.go:9"), strings.Index(out, "src/b.go:4"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().Write(&buf, "json"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "shapes", decoded["repository"])
	assert.Len(t, decoded["violations"], 2)
	assert.Len(t, decoded["errors"], 1)
}

func TestWriteUnknownFormat(t *testing.T) {
	err := New("x").Write(&bytes.Buffer{}, "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestEmptyReportEncodesEmptyLists(t *testing.T) {
	var buf bytes.Buffer
	r := New("empty")
	r.Finish(time.Now())
	require.NoError(t, r.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"violations": []`)
	assert.NotContains(t, buf.String(), `"measurements"`)
}
