// Package report collects the outcome of one analysis run and renders it as
// text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"codemetrics/internal/rule"

	"github.com/google/uuid"
)

// FileResult describes one analysed file
type FileResult struct {
	Path       string `json:"path"`
	Language   string `json:"language"`
	SHA        string `json:"sha"`
	Ephemeral  bool   `json:"ephemeral,omitempty"` // differs from the committed version
	Classes    int    `json:"classes"`
	Operations int    `json:"operations"`
}

// FileError is a file that could not be read or parsed
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Measurement is one metric value of one declaration
type Measurement struct {
	File          string  `json:"file"`
	QualifiedName string  `json:"qualified_name"`
	Kind          string  `json:"kind"`
	Metric        string  `json:"metric"`
	Value         float64 `json:"value"`
}

type Report struct {
	ID           string           `json:"id"`
	Repository   string           `json:"repository"`
	Commit       string           `json:"commit,omitempty"`
	Branch       string           `json:"branch,omitempty"`
	SessionID    string           `json:"session_id"`
	CreatedAt    time.Time        `json:"created_at"`
	Duration     string           `json:"duration"`
	Files        []FileResult     `json:"files"`
	Violations   []rule.Violation `json:"violations"`
	Measurements []Measurement    `json:"measurements,omitempty"`
	Errors       []FileError      `json:"errors,omitempty"`

	mu sync.Mutex
}

func New(repository string) *Report {
	return &Report{
		ID:         uuid.New().String(),
		Repository: repository,
		CreatedAt:  time.Now().UTC(),
		Files:      []FileResult{},
		Violations: []rule.Violation{},
	}
}

// The Add methods may be called from several goroutines.

func (r *Report) AddFile(f FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Files = append(r.Files, f)
}

func (r *Report) AddError(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, FileError{Path: path, Error: err.Error()})
}

func (r *Report) AddViolations(vs []rule.Violation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Violations = append(r.Violations, vs...)
}

func (r *Report) AddMeasurements(ms []Measurement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Measurements = append(r.Measurements, ms...)
}

// Finish sorts every section so output does not depend on scheduling.
func (r *Report) Finish(started time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Duration = time.Since(started).Round(time.Millisecond).String()
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
	sort.Slice(r.Errors, func(i, j int) bool { return r.Errors[i].Path < r.Errors[j].Path })
	rule.SortViolations(r.Violations)
	sort.SliceStable(r.Measurements, func(i, j int) bool {
		a, b := r.Measurements[i], r.Measurements[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.QualifiedName != b.QualifiedName {
			return a.QualifiedName < b.QualifiedName
		}
		return a.Metric < b.Metric
	})
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteText prints one line per violation in the form file:line: rule: message,
// followed by measurements and errors when present.
func (r *Report) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("Report %s for %s", r.ID, r.Repository)
	if r.Commit != "" {
		ew.printf(" at %s", r.Commit)
	}
	ew.printf("\n%d file(s), %d violation(s), %d error(s)\n", len(r.Files), len(r.Violations), len(r.Errors))

	for _, v := range r.Violations {
		ew.printf("%s:%d: %s: %s\n", v.File, v.BeginLine, v.Rule, v.Message)
	}
	if len(r.Measurements) > 0 {
		ew.printf("\nMeasurements:\n")
		for _, m := range r.Measurements {
			ew.printf("%s\t%s\t%s\t%s\n", m.File, m.QualifiedName, m.Metric, strconv.FormatFloat(m.Value, 'f', -1, 64))
		}
	}
	if len(r.Errors) > 0 {
		ew.printf("\nErrors:\n")
		for _, e := range r.Errors {
			ew.printf("%s: %s\n", e.Path, e.Error)
		}
	}
	return ew.err
}

// Write renders the report in format, "text" or "json".
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		return r.WriteJSON(w)
	case "text", "":
		return r.WriteText(w)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
