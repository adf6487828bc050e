package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBPathFromEnv(t *testing.T) {
	t.Setenv("AGENT_MEMORY_DB", "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", DBPath())
}

func TestDBPathFromDirEnv(t *testing.T) {
	t.Setenv("AGENT_MEMORY_DB", "")
	t.Setenv("AGENT_MEMORY_DIR", "/tmp/amdir")
	assert.Equal(t, filepath.Join("/tmp/amdir", "memory.db"), DBPath())
}

func TestScanPatternsCount(t *testing.T) {
	patterns := ScanPatterns()
	assert.Len(t, patterns, 3)
}

func TestLoadWithoutOverrideFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AGENT_MEMORY_DIR", dir)
	t.Setenv("AGENT_MEMORY_DB", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ChunkMaxChars, cfg.ChunkMaxChars)
	assert.Equal(t, DefaultLimit, cfg.DefaultLimit)
}

func TestLoadWithOverrideFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AGENT_MEMORY_DIR", dir)
	t.Setenv("AGENT_MEMORY_DB", "")

	override := "chunk_max_chars: 2000\ndefault_limit: 10\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".agentmemory.yaml"), []byte(override), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.ChunkMaxChars)
	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.Equal(t, ChunkOverlapChars, cfg.ChunkOverlapChars)
}

func TestLockPath(t *testing.T) {
	got := LockPath("/tmp/am/memory.db")
	assert.Equal(t, "/tmp/am/.agentmemory.lock", got)
}
