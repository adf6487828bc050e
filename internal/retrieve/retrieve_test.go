package retrieve

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmemory/agentmemory/internal/embed"
	"github.com/agentmemory/agentmemory/internal/store"
)

func TestSanitizeQuotesEachTokenAndEscapesOperators(t *testing.T) {
	assert.Equal(t, `""`, Sanitize(""))
	assert.Equal(t, `""`, Sanitize("   "))
	assert.Equal(t, `"tree-sitter"`, Sanitize("tree-sitter"))
	assert.Equal(t, `"c++"`, Sanitize("c++"))
	assert.Equal(t, `"NOT" "OR" "AND"`, Sanitize("NOT OR AND"))
	assert.Equal(t, `"term*"`, Sanitize("term*"))
	assert.Equal(t, `"foo" "bar"`, Sanitize("foo bar"))
}

func openTestStoreRetrieve(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path, embed.Dimensions)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedChunk(t *testing.T, s *store.Store, e embed.Embedder, text, path string) {
	t.Helper()
	vec, err := e.EmbedQuery(context.Background(), text)
	require.NoError(t, err)
	_, err = s.InsertChunk(store.Chunk{
		ContentID:      path + ":" + text,
		SourcePath:     path,
		Source:         "other",
		StartLine:      1,
		EndLine:        1,
		BodyHash:       "h",
		EmbeddingModel: e.ModelName(),
		Text:           text,
		CreatedAt:      "2026-01-01T00:00:00Z",
		UpdatedAt:      "2026-01-01T00:00:00Z",
	}, vec)
	require.NoError(t, err)
}

func TestSearchKeywordFindsMatchingChunk(t *testing.T) {
	s := openTestStoreRetrieve(t)
	e := embed.NewStaticEmbedder()
	seedChunk(t, s, e, "the quick brown fox jumps", "a.md")
	seedChunk(t, s, e, "an unrelated sentence about cooking", "b.md")

	r := New(s, e)
	results, err := r.SearchKeyword(context.Background(), "fox", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "a.md", results[0].Path)
	assert.Greater(t, results[0].Score, 0.0)
	assert.LessOrEqual(t, results[0].Score, 1.0)
}

func TestSearchVectorFindsClosestChunk(t *testing.T) {
	s := openTestStoreRetrieve(t)
	e := embed.NewStaticEmbedder()
	seedChunk(t, s, e, "database indexing and storage engines", "a.md")
	seedChunk(t, s, e, "baking bread at high altitude", "b.md")

	r := New(s, e)
	results, err := r.SearchVector(context.Background(), "database indexing and storage engines", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "a.md", results[0].Path)
}

func TestSearchHybridFiltersBelowMinScore(t *testing.T) {
	s := openTestStoreRetrieve(t)
	e := embed.NewStaticEmbedder()
	seedChunk(t, s, e, "goroutines and channels in concurrent go programs", "a.md")

	r := New(s, e)
	results, err := r.SearchHybrid(context.Background(), "completely unrelated query text", 5)
	require.NoError(t, err)
	for _, res := range results {
		assert.GreaterOrEqual(t, res.Score, 0.35)
	}
}

func TestSearchHybridReturnsRelevantMatch(t *testing.T) {
	s := openTestStoreRetrieve(t)
	e := embed.NewStaticEmbedder()
	seedChunk(t, s, e, "goroutines and channels in concurrent go programs", "a.md")
	seedChunk(t, s, e, "a recipe for sourdough bread", "b.md")

	r := New(s, e)
	results, err := r.SearchHybrid(context.Background(), "goroutines channels concurrent", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "a.md", results[0].Path)
}

func TestSearchHybridDegradesToVectorOnlyWhenFTSErrors(t *testing.T) {
	s := openTestStoreRetrieve(t)
	e := embed.NewStaticEmbedder()
	seedChunk(t, s, e, "goroutines and channels in concurrent go programs", "a.md")

	r := New(s, e)
	// A raw double quote inside a token breaks FTS5 MATCH syntax even after
	// Sanitize quotes the token, exercising the same degrade path a
	// pathological query would hit in production.
	results, err := r.SearchHybrid(context.Background(), `goroutines "broken query`, 5)
	require.NoError(t, err)
	_ = results
}
