package cmd

import (
	"path/filepath"

	"github.com/agentmemory/agentmemory/internal/config"
	"github.com/agentmemory/agentmemory/internal/embed"
	"github.com/agentmemory/agentmemory/internal/store"
)

// app bundles the store and embedder shared by every subcommand that
// touches the database. Callers must defer the cleanup func openApp returns.
type app struct {
	cfg      *config.Config
	store    *store.Store
	embedder embed.Embedder
}

// openApp resolves configuration, opens the database (acquiring the
// advisory write lock via store.Open), and wires a cached deterministic
// embedder in front of it.
func openApp() (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, func() {}, err
	}
	if err := config.EnsureDBDir(cfg.DBPath); err != nil {
		return nil, func() {}, err
	}

	s, err := store.Open(cfg.DBPath, config.EmbeddingDim)
	if err != nil {
		return nil, func() {}, err
	}
	stopLogging := setupLogging(filepath.Dir(cfg.DBPath))

	base := embed.NewStaticEmbedder()
	cached := embed.NewCachedEmbedder(base, embed.DefaultCacheSize, s)

	a := &app{cfg: cfg, store: s, embedder: cached}
	cleanup := func() {
		stopLogging()
		_ = s.Close()
	}
	return a, cleanup, nil
}
