package navigate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmemory/agentmemory/internal/ast"
	"github.com/agentmemory/agentmemory/internal/embed"
	"github.com/agentmemory/agentmemory/internal/store"
)

func openTestStoreNav(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path, embed.Dimensions)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedRepo(t *testing.T, s *store.Store, dir string) {
	t.Helper()
	source := []byte(`class Calculator:
    """Performs arithmetic."""

    def add(self, a, b):
        return a + b

    def subtract(self, a, b):
        return a - b


class Greeter:
    """Says hello."""

    def greet(self, name):
        return "hello " + name
`)
	extractor := ast.NewExtractor()
	defer extractor.Close()
	forest, _ := extractor.Extract(context.Background(), source, "python")
	flat := ast.Flatten(forest)
	nodes := make([]store.CodeNode, len(flat))
	parentIdx := make([]int, len(flat))
	for i, fn := range flat {
		nodes[i] = store.CodeNode{
			RepoPath: dir, FilePath: "calc.py", Kind: fn.Node.Kind, Name: fn.Node.Name,
			QualifiedName: fn.Node.QualifiedName, StartLine: fn.Node.StartLine, EndLine: fn.Node.EndLine,
			Signature: fn.Node.Signature, Docstring: fn.Node.Docstring, BodyHash: fn.Node.BodyHash, Depth: fn.Depth,
		}
		parentIdx[i] = fn.ParentIdx
	}
	_, err := s.ReplaceCodeTree(dir, "calc.py", nodes, parentIdx, nil)
	require.NoError(t, err)
}

func TestNavigateFindsMatchingNodeAndDescends(t *testing.T) {
	s := openTestStoreNav(t)
	dir := t.TempDir()
	seedRepo(t, s, dir)

	nav := New(s)
	result, err := nav.Navigate("calculator add", dir)
	require.NoError(t, err)
	require.NotEmpty(t, result.Nodes)
	require.NotEmpty(t, result.Steps)

	var sawAdd bool
	for _, n := range result.Nodes {
		if n.Name == "add" {
			sawAdd = true
		}
	}
	assert.True(t, sawAdd)
}

func TestNavigateReturnsEmptyForEmptyRepo(t *testing.T) {
	s := openTestStoreNav(t)
	nav := New(s)
	result, err := nav.Navigate("anything", "/nonexistent/repo")
	require.NoError(t, err)
	assert.Empty(t, result.Nodes)
}

func TestNavigateTerminatesWithinMaxDepth(t *testing.T) {
	s := openTestStoreNav(t)
	dir := t.TempDir()
	seedRepo(t, s, dir)

	nav := New(s)
	result, err := nav.Navigate("add subtract greet", dir)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Steps), nav.maxDepth+1)
}

func TestScoreCandidatesDegradesOnMalformedMatchQuery(t *testing.T) {
	s := openTestStoreNav(t)
	dir := t.TempDir()
	seedRepo(t, s, dir)

	nav := New(s)
	// A raw double quote breaks FTS5 MATCH syntax; scoreCandidates must
	// degrade to an empty result instead of surfacing the error.
	scored, err := nav.scoreCandidates(`"unterminated`, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, scored)
}
