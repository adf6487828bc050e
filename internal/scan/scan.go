// Package scan discovers indexable code files under a repository root.
package scan

import (
	"os"
	"path/filepath"
	"sort"

	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
	"github.com/agentmemory/agentmemory/internal/ast"
)

// skipDirs is the fixed blacklist of directory names that are never
// descended into, regardless of position in the tree.
var skipDirs = map[string]bool{
	"node_modules":  true,
	".git":          true,
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	".tox":          true,
	".mypy_cache":   true,
	".pytest_cache": true,
	"dist":          true,
	"build":         true,
	".next":         true,
	".nuxt":         true,
	"coverage":      true,
	".cache":        true,
	".eggs":         true,
	"vendor":        true,
	"target":        true,
}

// DiscoverCodeFiles walks rootPath recursively and returns every file whose
// extension is recognized by ast.SupportedExtensions, in deterministic
// (lexically sorted) order. Directories beginning with "." and the fixed
// skipDirs blacklist are never descended into.
func DiscoverCodeFiles(rootPath string) ([]string, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, agentmemoryerrors.IOError(agentmemoryerrors.ErrCodeRootNotExist,
			"code index root does not exist: "+rootPath, err)
	}
	if !info.IsDir() {
		return nil, agentmemoryerrors.BadInput(agentmemoryerrors.ErrCodeBadPath,
			"code index root must be a directory: "+rootPath)
	}

	exts := ast.SupportedExtensions()
	var files []string
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			// Permission errors and similar are skipped, not fatal
			// (mirrors the original indexer's best-effort discovery).
			return nil
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, entry := range entries {
			name := entry.Name()
			full := filepath.Join(dir, name)
			if entry.IsDir() {
				if skipDirs[name] || hasDotPrefix(name) {
					continue
				}
				if err := walk(full); err != nil {
					return err
				}
				continue
			}
			if exts[filepath.Ext(name)] {
				files = append(files, full)
			}
		}
		return nil
	}

	if err := walk(rootPath); err != nil {
		return nil, err
	}
	return files, nil
}

func hasDotPrefix(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
