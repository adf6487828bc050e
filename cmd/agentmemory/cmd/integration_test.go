package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args against a fresh database file
// and returns stdout.
func runCLI(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	t.Setenv("AGENT_MEMORY_DB", dbPath)

	root := NewRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return buf.String()
}

var hexID = regexp.MustCompile(`^[0-9a-f]{64}$`)

// TestAddThenGetRoundTrip covers the add-then-get round trip.
func TestAddThenGetRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memory.db")

	out := runCLI(t, dbPath, "add", "roundtrip test content", "--source", "daily", "--tags", "test")
	id := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "✅ "))
	require.True(t, hexID.MatchString(id), "id %q should be a 64-char hex string", id)

	out = runCLI(t, dbPath, "get", id, "--json")
	var got struct {
		Text       string `json:"text"`
		Source     string `json:"source"`
		SourcePath string `json:"source_path"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "roundtrip test content", got.Text)
	assert.Equal(t, "daily", got.Source)
	assert.Contains(t, got.SourcePath, "test")
}

// TestIndexThenSearch covers indexing a directory then searching it.
func TestIndexThenSearch(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repo, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "docs", "guide.md"),
		[]byte("# User Guide\n\n## Authentication\n\nUse OAuth2 for authentication with JWT tokens.\n"), 0o644))

	dbPath := filepath.Join(t.TempDir(), "memory.db")
	runCLI(t, dbPath, "index", "--path", filepath.Join(repo, "docs"))

	out := runCLI(t, dbPath, "search", "OAuth authentication", "--json")
	var results []struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.NotEmpty(t, results)
	var sawOAuth bool
	for _, r := range results {
		if strings.Contains(r.Text, "OAuth") {
			sawOAuth = true
		}
	}
	assert.True(t, sawOAuth)
}

// TestSanitizedQueryKeywordSearch covers a keyword query containing FTS syntax characters.
func TestSanitizedQueryKeywordSearch(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repo, "notes.md"),
		[]byte("# Notes\n\ntree-sitter and sqlite-vec power this engine.\n"), 0o644))

	dbPath := filepath.Join(t.TempDir(), "memory.db")
	runCLI(t, dbPath, "index", "--path", repo)

	out := runCLI(t, dbPath, "search", "tree-sitter", "--keyword", "--json")
	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.NotEmpty(t, results)
}

// TestCodeIndexTreeShape covers code indexing producing the expected tree shape.
func TestCodeIndexTreeShape(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repo, "calc.py"), []byte(`class Calculator:
    def add(self, a, b):
        return a + b

    def subtract(self, a, b):
        return a - b
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "utils.py"), []byte(`def read_file(path):
    with open(path) as f:
        return f.read()
`), 0o644))

	dbPath := filepath.Join(t.TempDir(), "memory.db")
	runCLI(t, dbPath, "code-index", repo)

	out := runCLI(t, dbPath, "code-tree", repo, "--json")
	var trees []treeNode
	require.NoError(t, json.Unmarshal([]byte(out), &trees))
	require.Len(t, trees, 3)

	var calculator *treeNode
	for i := range trees {
		if trees[i].Name == "Calculator" {
			calculator = &trees[i]
		}
	}
	require.NotNil(t, calculator)
	require.Len(t, calculator.Children, 2)
	names := map[string]bool{}
	for _, c := range calculator.Children {
		names[c.Name] = true
		assert.Equal(t, 1, c.Depth)
	}
	assert.True(t, names["add"])
	assert.True(t, names["subtract"])
}

// TestNavigatorTrace covers a beam search trace over indexed code.
func TestNavigatorTrace(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repo, "calc.py"), []byte(`class Calculator:
    def add(self, a, b):
        return a + b

    def subtract(self, a, b):
        return a - b
`), 0o644))

	dbPath := filepath.Join(t.TempDir(), "memory.db")
	runCLI(t, dbPath, "code-index", repo)

	out := runCLI(t, dbPath, "code-nav", "calculator add", "--repo", repo, "--json")
	var result struct {
		Nodes []map[string]any `json:"nodes"`
		Steps []struct {
			Depth      int      `json:"depth"`
			Candidates []string `json:"candidates"`
			Selected   []string `json:"selected"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotEmpty(t, result.Nodes)
	require.NotEmpty(t, result.Steps)

	first := result.Steps[0]
	assert.Equal(t, 0, first.Depth)
	var sawMatch bool
	for _, n := range first.Selected {
		if n == "Calculator" || n == "add" {
			sawMatch = true
		}
	}
	assert.True(t, sawMatch)
}

// TestChunkSizing covers chunk size limits honoring a config override.
func TestChunkSizing(t *testing.T) {
	repo := t.TempDir()
	var body strings.Builder
	body.WriteString("# Heading\n\n")
	line := strings.Repeat("x", 198) + "\n"
	for i := 0; i < 20; i++ {
		body.WriteString(line)
	}
	require.NoError(t, os.WriteFile(filepath.Join(repo, "big.md"), []byte(body.String()), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(repo, ".agentmemory.yaml"),
		[]byte("chunk_max_chars: 800\nchunk_overlap_chars: 200\n"), 0o644))

	dbPath := filepath.Join(repo, "memory.db")
	t.Setenv("AGENT_MEMORY_DIR", repo)
	runCLI(t, dbPath, "index", "--path", repo)

	out := runCLI(t, dbPath, "list", "--json")
	var chunks []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &chunks))
	assert.GreaterOrEqual(t, len(chunks), 2)
}
