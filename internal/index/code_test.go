package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmemory/agentmemory/internal/ast"
)

func TestIndexRepoExtractsAndGatesByHash(t *testing.T) {
	s := openTestStore(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc.py"), []byte(
		"class Calculator:\n    def add(self, a, b):\n        return a + b\n"), 0o644))

	extractor := ast.NewExtractor()
	defer extractor.Close()
	ci := NewCodeIndexer(s, extractor)

	stats, err := ci.IndexRepo(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Greater(t, stats.NodesCreated, 0)

	stats2, err := ci.IndexRepo(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, stats2.FilesIndexed)
	assert.Equal(t, 1, stats2.FilesSkipped)
}

func TestIndexRepoRecordsKnownEmptyFile(t *testing.T) {
	s := openTestStore(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.rs"), []byte("fn main() {}\n"), 0o644))

	extractor := ast.NewExtractor()
	defer extractor.Close()
	ci := NewCodeIndexer(s, extractor)

	stats, err := ci.IndexRepo(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 0, stats.NodesCreated)

	stats2, err := ci.IndexRepo(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, stats2.FilesIndexed)
	assert.Equal(t, 1, stats2.FilesSkipped)
}

func TestIndexRepoSkipsUnrecognizedExtension(t *testing.T) {
	s := openTestStore(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))

	extractor := ast.NewExtractor()
	defer extractor.Close()
	ci := NewCodeIndexer(s, extractor)

	stats, err := ci.IndexRepo(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesSkipped)
}
