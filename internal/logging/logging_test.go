package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)

	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)
	defer cleanup()

	logger.Info("indexed", "chunks", 3)

	data, err := os.ReadFile(filepath.Join(dir, "index.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"msg\":\"indexed\"")
	assert.Contains(t, string(data), "\"chunks\":3")
}

func TestDebugConfigMirrorsStderr(t *testing.T) {
	dir := t.TempDir()
	cfg := DebugConfig(dir)
	assert.True(t, cfg.WriteToStderr)
	assert.Equal(t, "debug", cfg.Level)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, int(-4), int(parseLevel("debug")))
	assert.Equal(t, int(0), int(parseLevel("info")))
	assert.Equal(t, int(4), int(parseLevel("warn")))
	assert.Equal(t, int(8), int(parseLevel("error")))
	assert.Equal(t, int(0), int(parseLevel("")))
}
