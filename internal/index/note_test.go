package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmemory/agentmemory/internal/chunk"
	"github.com/agentmemory/agentmemory/internal/embed"
	"github.com/agentmemory/agentmemory/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path, embed.Dimensions)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestClassifySource(t *testing.T) {
	assert.Equal(t, "daily", classifySource("/home/u/.claude/agent-memory/daily-logs/2026-01-01.md"))
	assert.Equal(t, "session", classifySource("/home/u/.claude/agent-memory/sessions/abc.md"))
	assert.Equal(t, "memory", classifySource("/home/u/.claude/projects/foo/memory/MEMORY.md"))
	assert.Equal(t, "other", classifySource("/home/u/notes/random.md"))
}

func TestContentIDIsStableAndPathSensitive(t *testing.T) {
	a := contentID("/a.md", 1, "hello")
	b := contentID("/a.md", 1, "hello")
	c := contentID("/b.md", 1, "hello")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestIndexPatternsIndexesAndSkipsUnchanged(t *testing.T) {
	s := openTestStore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(path, []byte("# Heading\n\nSome body text.\n"), 0o644))

	ni := NewNoteIndexer(s, chunk.NewMarkdownChunker(chunk.DefaultOptions()), embed.NewStaticEmbedder(), 2)

	stats, err := ni.IndexPatterns(context.Background(), []string{filepath.Join(dir, "*.md")})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesSkipped)
	assert.Greater(t, stats.ChunksCreated, 0)

	stats2, err := ni.IndexPatterns(context.Background(), []string{filepath.Join(dir, "*.md")})
	require.NoError(t, err)
	assert.Equal(t, 0, stats2.FilesIndexed)
	assert.Equal(t, 1, stats2.FilesSkipped)
}

func TestIndexPatternsReindexesOnChange(t *testing.T) {
	s := openTestStore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(path, []byte("# Heading\n\nOriginal.\n"), 0o644))

	ni := NewNoteIndexer(s, chunk.NewMarkdownChunker(chunk.DefaultOptions()), embed.NewStaticEmbedder(), 2)
	_, err := ni.IndexPatterns(context.Background(), []string{filepath.Join(dir, "*.md")})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("# Heading\n\nChanged body.\n"), 0o644))
	stats, err := ni.IndexPatterns(context.Background(), []string{filepath.Join(dir, "*.md")})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)

	chunks, err := s.ListChunks("", 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "Changed")
}

func TestIndexPatternsSkipsEmptyFile(t *testing.T) {
	s := openTestStore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.md")
	require.NoError(t, os.WriteFile(path, []byte("   \n\n  "), 0o644))

	ni := NewNoteIndexer(s, chunk.NewMarkdownChunker(chunk.DefaultOptions()), embed.NewStaticEmbedder(), 2)
	stats, err := ni.IndexPatterns(context.Background(), []string{filepath.Join(dir, "*.md")})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesSkipped)
}
