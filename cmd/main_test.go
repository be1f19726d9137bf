package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"codemetrics/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAnalyzeCommand(t *testing.T) {
	root := t.TempDir()
	src := "def helper(a, b):\n    if a and b:\n        return a\n    return b\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "tools.py"), []byte(src), 0o644))

	cfg := &config.Config{
		Source: config.SourceConfig{Repositories: []config.Repository{
			{Name: "tools", Path: root},
			{Name: "skipped", Path: filepath.Join(root, "missing"), Disabled: true},
		}},
		Rules: []config.RuleConfig{{
			Name:            "CycloRule",
			OperationMetric: "CYCLO",
			Properties:      map[string]string{"reportLevel": "3", "reportClasses": "false"},
		}},
		App: config.App{NumFileThreads: 1, Format: "text"},
	}

	var out bytes.Buffer
	failed := AnalyzeCommand(context.Background(), cfg, zaptest.NewLogger(t), nil, false, &out)
	assert.Equal(t, 0, failed)
	assert.Contains(t, out.String(), "for tools")
	assert.Contains(t, out.String(), "tools.py:1: CycloRule: The function 'helper' has a CYCLO of 3.")
}

func TestAnalyzeCommandFailures(t *testing.T) {
	cfg := &config.Config{App: config.App{Format: "text"}}
	var out bytes.Buffer
	assert.Equal(t, 2, AnalyzeCommand(context.Background(), cfg, zaptest.NewLogger(t), []string{"a", "b"}, false, &out))

	cfg.Rules = []config.RuleConfig{{Name: "Unknown"}}
	assert.Equal(t, 1, AnalyzeCommand(context.Background(), cfg, zaptest.NewLogger(t), nil, false, &out))
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.App{LogLevel: "warn"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = newLogger(config.App{LogLevel: "loud"})
	assert.Error(t, err)
}
