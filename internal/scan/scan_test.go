package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
}

func TestDiscoverCodeFilesSkipsBlacklistedDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go")
	writeFile(t, root, "pkg/util.py")
	writeFile(t, root, "node_modules/lib/index.js")
	writeFile(t, root, ".git/hooks/pre-commit.sh")
	writeFile(t, root, "vendor/dep/dep.go")
	writeFile(t, root, ".hidden/code.py")

	files, err := DiscoverCodeFiles(root)
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f)
		rels = append(rels, rel)
	}
	assert.ElementsMatch(t, []string{"main.go", filepath.Join("pkg", "util.py")}, rels)
}

func TestDiscoverCodeFilesIgnoresUnsupportedExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md")
	writeFile(t, root, "image.png")
	writeFile(t, root, "main.go")

	files, err := DiscoverCodeFiles(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "main.go"), files[0])
}

func TestDiscoverCodeFilesIsSortedDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.go")
	writeFile(t, root, "a.go")
	writeFile(t, root, "z/c.go")

	first, err := DiscoverCodeFiles(root)
	require.NoError(t, err)
	second, err := DiscoverCodeFiles(root)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, filepath.Join(root, "a.go"), first[0])
	assert.Equal(t, filepath.Join(root, "b.go"), first[1])
}

func TestDiscoverCodeFilesRejectsMissingRoot(t *testing.T) {
	_, err := DiscoverCodeFiles(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestDiscoverCodeFilesRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.txt")
	_, err := DiscoverCodeFiles(filepath.Join(root, "file.txt"))
	assert.Error(t, err)
}
