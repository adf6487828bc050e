// Package config resolves the database path, scan patterns, and tunable
// constants for agentmemory, following the documented environment-variable
// resolution order. No global mutable state is kept here: callers hold a
// *Config value and pass it explicitly, which is what lets tests override
// tunables without touching process-wide globals.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Tunable defaults for chunking, search, and indexing.
const (
	EmbeddingModel = "local-deterministic-v1"
	EmbeddingDim   = 384

	ChunkMaxChars     = 1600
	ChunkOverlapChars = 320

	VectorWeight        = 0.7
	BM25Weight          = 0.3
	CandidateMultiplier = 4
	MinScore            = 0.35
	DefaultLimit        = 5

	BeamWidth = 3
	MaxDepth  = 5
)

// Config carries the resolved paths and the (possibly overridden) tunables
// a single invocation uses.
type Config struct {
	DBPath string

	ChunkMaxChars     int
	ChunkOverlapChars int
	DefaultLimit      int
}

// Load resolves the database path from the environment and applies any
// optional ".agentmemory.yaml" overrides found in MemoryDir() (which does
// not follow AGENT_MEMORY_DB). It never fails on a missing override file — that file is
// entirely optional.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:            DBPath(),
		ChunkMaxChars:     ChunkMaxChars,
		ChunkOverlapChars: ChunkOverlapChars,
		DefaultLimit:      DefaultLimit,
	}

	overridePath := filepath.Join(MemoryDir(), ".agentmemory.yaml")
	data, err := os.ReadFile(overridePath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var overrides struct {
		ChunkMaxChars     int `yaml:"chunk_max_chars"`
		ChunkOverlapChars int `yaml:"chunk_overlap_chars"`
		DefaultLimit      int `yaml:"default_limit"`
	}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, err
	}
	if overrides.ChunkMaxChars > 0 {
		cfg.ChunkMaxChars = overrides.ChunkMaxChars
	}
	if overrides.ChunkOverlapChars > 0 {
		cfg.ChunkOverlapChars = overrides.ChunkOverlapChars
	}
	if overrides.DefaultLimit > 0 {
		cfg.DefaultLimit = overrides.DefaultLimit
	}
	return cfg, nil
}

// MemoryDir returns AGENT_MEMORY_DIR, or $HOME/.claude/agent-memory.
func MemoryDir() string {
	if dir := os.Getenv("AGENT_MEMORY_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".claude", "agent-memory")
}

// DBPath returns AGENT_MEMORY_DB, or AGENT_MEMORY_DIR/memory.db, or
// $HOME/.claude/agent-memory/memory.db.
func DBPath() string {
	if db := os.Getenv("AGENT_MEMORY_DB"); db != "" {
		return db
	}
	return filepath.Join(MemoryDir(), "memory.db")
}

// ScanPatterns returns the default glob patterns for note indexing
//, each home-relative.
func ScanPatterns() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return []string{
		filepath.Join(home, ".claude", "projects", "*", "memory", "MEMORY.md"),
		filepath.Join(home, ".claude", "agent-memory", "daily-logs", "*.md"),
		filepath.Join(home, ".claude", "agent-memory", "sessions", "*.md"),
	}
}

// EnsureDBDir creates the database's containing directory on demand.
func EnsureDBDir(dbPath string) error {
	return os.MkdirAll(filepath.Dir(dbPath), 0o755)
}

// LockPath returns the advisory lock file path used to serialize writers.
func LockPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), ".agentmemory.lock")
}
