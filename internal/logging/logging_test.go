package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeFallsBackToInfoOnUnknownLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "chatty"

	require.NoError(t, Initialize(cfg))
	require.NotNil(t, Logger)
	assert.False(t, Logger.Core().Enabled(-1)) // debug stays off
}

func TestInitializeOpensFileSink(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.Output = filepath.Join(t.TempDir(), "advisor.log")

	require.NoError(t, Initialize(cfg))

	Info("sink check")
	Sync()
	assert.FileExists(t, cfg.Output)
}

func TestInitializeRejectsUnwritableOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = filepath.Join(t.TempDir(), "missing", "advisor.log")

	err := Initialize(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open log output")
}
