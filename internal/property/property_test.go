package property

import (
	"testing"

	"codemetrics/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntProperty(t *testing.T) {
	p := NewIntProperty("classReportLevel", "Class threshold", 1, 600, 80)

	tests := []struct {
		name    string
		props   map[string]string
		want    int
		wantErr error
	}{
		{"default", map[string]string{}, 80, nil},
		{"explicit", map[string]string{"classReportLevel": "30"}, 30, nil},
		{"padded", map[string]string{"classReportLevel": " 600 "}, 600, nil},
		{"too low", map[string]string{"classReportLevel": "0"}, 0, ErrOutOfRange},
		{"too high", map[string]string{"classReportLevel": "601"}, 0, ErrOutOfRange},
		{"not a number", map[string]string{"classReportLevel": "lots"}, 0, ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.From(tt.props)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "80", p.DefaultString())
}

func TestDoubleProperty(t *testing.T) {
	p := NewDoubleProperty("reportLevel", "Threshold", 0, 1, 0.3)
	v, err := p.From(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.3, v)

	v, err = p.Parse("0.75")
	require.NoError(t, err)
	assert.Equal(t, 0.75, v)

	_, err = p.Parse("1.5")
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, "0.3", p.DefaultString())
}

func TestBoolProperty(t *testing.T) {
	p := NewBoolProperty("reportClasses", "Report classes", true)
	v, err := p.From(map[string]string{"reportClasses": "false"})
	require.NoError(t, err)
	assert.False(t, v)
	_, err = p.Parse("maybe")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestOptionsProperty(t *testing.T) {
	p := NewOptionsProperty("cycloOptions", "Cyclo options", map[string]metrics.Option{
		"ignoreBooleanPaths": "ignoreBooleanPaths",
		"countImports":       "countImports",
	})

	opts, err := p.From(map[string]string{})
	require.NoError(t, err)
	assert.Empty(t, opts)

	opts, err = p.Parse("ignoreBooleanPaths, countImports")
	require.NoError(t, err)
	assert.Equal(t, []metrics.Option{"ignoreBooleanPaths", "countImports"}, opts)

	_, err = p.Parse("fast")
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, []string{"countImports", "ignoreBooleanPaths"}, p.Labels())
}
