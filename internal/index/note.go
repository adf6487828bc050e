// Package index implements the incremental, hash-gated indexing pipelines
// for notes and code.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agentmemory/agentmemory/internal/chunk"
	"github.com/agentmemory/agentmemory/internal/embed"
	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
	"github.com/agentmemory/agentmemory/internal/store"
)

// Stats summarizes one indexing run.
type Stats struct {
	FilesIndexed  int
	FilesSkipped  int
	ChunksCreated int
	NodesCreated  int
}

// NoteIndexer chunks, embeds, and upserts Markdown notes, hash-gated per
// file.
type NoteIndexer struct {
	store       *store.Store
	chunker     *chunk.MarkdownChunker
	embedder    embed.Embedder
	concurrency int
}

// NewNoteIndexer builds a NoteIndexer. concurrency bounds the number of
// files chunked/embedded in parallel; writes still serialize through the
// store's single connection. A non-positive concurrency
// defaults to runtime.NumCPU().
func NewNoteIndexer(s *store.Store, chunker *chunk.MarkdownChunker, embedder embed.Embedder, concurrency int) *NoteIndexer {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &NoteIndexer{store: s, chunker: chunker, embedder: embedder, concurrency: concurrency}
}

// IndexPatterns expands patterns to a sorted, de-duplicated file list and
// indexes each one. I/O errors on a single file are
// non-fatal; a database error aborts the whole call. Per-file goroutines
// chunk and embed concurrently, but the store's connection pool is pinned
// to a single connection (store.Open sets SetMaxOpenConns(1)), so store
// writes are serialized. Each file's chunk rewrite is one transaction; its
// fingerprint and embedder-model rows are written afterwards in separate
// statements, not inside that transaction.
func (ni *NoteIndexer) IndexPatterns(ctx context.Context, patterns []string) (Stats, error) {
	runID := uuid.NewString()
	files, err := expandPatterns(patterns)
	if err != nil {
		return Stats{}, err
	}
	slog.Info("note_index_start", slog.String("run_id", runID), slog.Int("files", len(files)))

	var mu sync.Mutex
	stats := Stats{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ni.concurrency)

	for _, path := range files {
		path := path
		g.Go(func() error {
			indexed, skipped, chunksCreated, fatal := ni.indexOne(gctx, path)
			if fatal != nil {
				return fatal
			}
			mu.Lock()
			if indexed {
				stats.FilesIndexed++
				stats.ChunksCreated += chunksCreated
			}
			if skipped {
				stats.FilesSkipped++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("note_index_failed", slog.String("run_id", runID), slog.String("error", err.Error()))
		return Stats{}, err
	}
	slog.Info("note_index_done", slog.String("run_id", runID),
		slog.Int("files_indexed", stats.FilesIndexed), slog.Int("files_skipped", stats.FilesSkipped))
	return stats, nil
}

// indexOne runs steps 1-6 for a single file. The first three return values
// describe bookkeeping outcomes; a non-nil fatal error means a database
// failure that must abort the whole run.
func (ni *NoteIndexer) indexOne(ctx context.Context, path string) (indexed, skipped bool, chunksCreated int, fatal error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, true, 0, nil
	}

	contentHash := sha256Hex(data)
	existing, err := ni.store.GetNoteFingerprint(path)
	if err != nil {
		return false, false, 0, err
	}
	if existing != nil && existing.ContentHash == contentHash {
		return false, true, 0, nil
	}

	if !utf8.Valid(data) {
		return false, true, 0, nil
	}
	text := string(data)

	pieces := ni.chunker.Chunk(text)
	if len(pieces) == 0 {
		return false, true, 0, nil
	}

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Text
	}
	vectors, err := ni.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return false, false, 0, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeInternal, err)
	}

	source := classifySource(path)
	now := nowRFC3339()
	newChunks := make([]store.Chunk, len(pieces))
	for i, p := range pieces {
		newChunks[i] = store.Chunk{
			ContentID:      contentID(path, p.StartLine, p.Text),
			SourcePath:     path,
			Source:         source,
			StartLine:      p.StartLine,
			EndLine:        p.EndLine,
			BodyHash:       sha256Hex([]byte(p.Text)),
			EmbeddingModel: ni.embedder.ModelName(),
			Text:           p.Text,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}

	if _, err := ni.store.ReplaceFileChunks(path, newChunks, vectors); err != nil {
		return false, false, 0, err
	}

	info, statErr := os.Stat(path)
	var mtime, size int64
	if statErr == nil {
		mtime = info.ModTime().Unix()
		size = info.Size()
	}
	if err := ni.store.UpsertNoteFingerprint(store.NoteFingerprint{
		SourcePath: path, ContentHash: contentHash, MTime: mtime, Size: size,
	}); err != nil {
		return false, false, 0, err
	}
	if err := ni.store.RecordEmbedderModel(ni.embedder.ModelName()); err != nil {
		return false, false, 0, err
	}

	return true, false, len(pieces), nil
}

// classifySource maps a path to a Chunk source class.
func classifySource(path string) string {
	switch {
	case strings.Contains(path, "daily-logs"):
		return "daily"
	case strings.Contains(path, "sessions"):
		return "session"
	case strings.HasSuffix(path, "MEMORY.md"):
		return "memory"
	default:
		return "other"
	}
}

// contentID computes the stable content-derived chunk id.
func contentID(path string, startLine int, text string) string {
	textHash := sha256Hex([]byte(text))
	return sha256Hex([]byte(path + ":" + strconv.Itoa(startLine) + ":" + textHash))
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// expandPatterns globs each pattern and returns the sorted, de-duplicated
// union of matches.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, agentmemoryerrors.BadInput(agentmemoryerrors.ErrCodeBadPath, "invalid glob pattern: "+pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
