package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/agentmemory/agentmemory/internal/ast"
	"github.com/agentmemory/agentmemory/internal/scan"
	"github.com/agentmemory/agentmemory/internal/store"
)

// CodeIndexer walks a repository, parses each source file, and replaces its
// code tree, hash-gated per file.
type CodeIndexer struct {
	store     *store.Store
	extractor *ast.Extractor
}

// NewCodeIndexer builds a CodeIndexer over extractor, which the caller owns
// and must Close when done.
func NewCodeIndexer(s *store.Store, extractor *ast.Extractor) *CodeIndexer {
	return &CodeIndexer{store: s, extractor: extractor}
}

// IndexRepo discovers files under rootPath and indexes each one. Unreadable
// files are non-fatal and counted as skipped; a file that yields no nodes
// (including one that fails to parse) is recorded as known empty and counted
// as indexed. Database errors abort the call.
func (ci *CodeIndexer) IndexRepo(ctx context.Context, rootPath string) (Stats, error) {
	runID := uuid.NewString()
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		absRoot = rootPath
	}

	files, err := scan.DiscoverCodeFiles(rootPath)
	if err != nil {
		return Stats{}, err
	}
	slog.Info("code_index_start", slog.String("run_id", runID), slog.String("repo", absRoot), slog.Int("files", len(files)))

	stats := Stats{}
	present := make(map[string]bool, len(files))

	for _, path := range files {
		absPath := mustAbs(path, rootPath)
		relPath, err := filepath.Rel(absRoot, absPath)
		if err != nil {
			relPath = path
		}
		present[relPath] = true

		indexed, skipped, nodesCreated, fatal := ci.indexOne(ctx, absRoot, relPath, absPath)
		if fatal != nil {
			return Stats{}, fatal
		}
		if indexed {
			stats.FilesIndexed++
			stats.NodesCreated += nodesCreated
		}
		if skipped {
			stats.FilesSkipped++
		}
	}

	if err := ci.store.DeleteCodeFingerprintsMissing(absRoot, present); err != nil {
		return Stats{}, err
	}

	slog.Info("code_index_done", slog.String("run_id", runID),
		slog.Int("files_indexed", stats.FilesIndexed), slog.Int("files_skipped", stats.FilesSkipped))
	return stats, nil
}

func mustAbs(path, fallbackRoot string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Join(fallbackRoot, path)
	}
	return abs
}

// indexOne hash-gates, parses, and persists the code tree for a single file.
func (ci *CodeIndexer) indexOne(ctx context.Context, repoPath, relPath, absPath string) (indexed, skipped bool, nodesCreated int, fatal error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return false, true, 0, nil
	}
	contentHash := sha256Hex(data)

	existing, err := ci.store.GetCodeFingerprint(repoPath, relPath)
	if err != nil {
		return false, false, 0, err
	}
	if existing != nil && existing.ContentHash == contentHash {
		return false, true, 0, nil
	}

	language := ast.DetectLanguage(filepath.Ext(relPath))
	if language == "" {
		return false, true, 0, nil
	}

	forest, refs := ci.extractor.Extract(ctx, data, language)

	info, statErr := os.Stat(absPath)
	var mtime, size int64
	if statErr == nil {
		mtime = info.ModTime().Unix()
		size = info.Size()
	}

	if len(forest) == 0 {
		// "known empty" — still recorded so it is not re-parsed next run.
		if err := ci.store.DeleteCodeTree(repoPath, relPath); err != nil {
			return false, false, 0, err
		}
		if err := ci.store.UpsertCodeFingerprint(store.CodeFingerprint{
			RepoPath: repoPath, FilePath: relPath, ContentHash: contentHash, MTime: mtime, Size: size,
		}); err != nil {
			return false, false, 0, err
		}
		return true, false, 0, nil
	}

	flat := ast.Flatten(forest)
	nodes := make([]store.CodeNode, len(flat))
	parentIdx := make([]int, len(flat))
	for i, fn := range flat {
		nodes[i] = store.CodeNode{
			RepoPath:      repoPath,
			FilePath:      relPath,
			Kind:          fn.Node.Kind,
			Name:          fn.Node.Name,
			QualifiedName: fn.Node.QualifiedName,
			StartLine:     fn.Node.StartLine,
			EndLine:       fn.Node.EndLine,
			Signature:     fn.Node.Signature,
			Docstring:     fn.Node.Docstring,
			BodyHash:      fn.Node.BodyHash,
			Depth:         fn.Depth,
		}
		parentIdx[i] = fn.ParentIdx
	}

	// Refs carry no source-node index, so each one is attached to the import
	// node that starts on the ref's line, or to the file's first node
	// (index 0) when no import node matches (see refSourceIndex).
	storeRefs := make([]store.CodeRef, 0, len(refs))
	for _, r := range refs {
		sourceIdx := refSourceIndex(flat, r)
		storeRefs = append(storeRefs, store.CodeRef{
			SourceID:   int64(sourceIdx),
			TargetName: r.TargetName,
			Kind:       r.Kind,
			Line:       r.Line,
		})
	}

	if _, err := ci.store.ReplaceCodeTree(repoPath, relPath, nodes, parentIdx, storeRefs); err != nil {
		return false, false, 0, err
	}
	if err := ci.store.UpsertCodeFingerprint(store.CodeFingerprint{
		RepoPath: repoPath, FilePath: relPath, ContentHash: contentHash, MTime: mtime, Size: size,
	}); err != nil {
		return false, false, 0, err
	}

	return true, false, len(flat), nil
}

// refSourceIndex finds the flattened index of the import node matching ref
// by start line, falling back to 0 (the file's first node) when no exact
// match is found.
func refSourceIndex(flat []ast.FlatNode, r ast.Ref) int {
	for i, fn := range flat {
		if fn.Node.Kind == "import" && fn.Node.StartLine == r.Line {
			return i
		}
	}
	return 0
}
