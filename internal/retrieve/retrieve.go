// Package retrieve implements the three search modes over the chunk index:
// keyword-only (BM25), vector-only, and score-fused hybrid.
package retrieve

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/agentmemory/agentmemory/internal/config"
	"github.com/agentmemory/agentmemory/internal/embed"
	"github.com/agentmemory/agentmemory/internal/store"
)

// SearchResult is one scored chunk, score in [0, 1].
type SearchResult struct {
	ChunkID   int64   `json:"id"`
	Text      string  `json:"text"`
	Path      string  `json:"path"`
	Source    string  `json:"source"`
	Score     float64 `json:"score"`
	StartLine int     `json:"start_line"`
	EndLine   int     `json:"end_line"`
}

// Retriever runs search queries against a store using an embedder for the
// vector and hybrid modes.
type Retriever struct {
	store    *store.Store
	embedder embed.Embedder
}

// New builds a Retriever.
func New(s *store.Store, embedder embed.Embedder) *Retriever {
	return &Retriever{store: s, embedder: embedder}
}

// Sanitize escapes a user query for FTS5 MATCH by wrapping every
// whitespace-delimited token in double quotes, so operator characters
// (-, +, *, NOT, OR, AND) are treated as literal text. An
// empty query becomes `""`.
func Sanitize(query string) string {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return `""`
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " ")
}

func candidatePoolSize(limit int) int {
	return limit * config.CandidateMultiplier
}

func resolveLimit(limit int) int {
	if limit <= 0 {
		return config.DefaultLimit
	}
	return limit
}

func bm25Score(rank float64) float64 {
	if rank < 0 {
		rank = -rank
	}
	return 1.0 / (1.0 + rank)
}

func vectorScore(distance float64) float64 {
	return 1.0 - distance
}

// SearchKeyword runs BM25-only search.
func (r *Retriever) SearchKeyword(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	limit = resolveLimit(limit)
	candidates, err := r.store.SearchChunksFTS(Sanitize(query), candidatePoolSize(limit))
	if err != nil {
		return nil, err
	}

	chunks, err := r.store.ChunksByRowIDs(rowIDsOf(candidates))
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(candidates))
	for _, c := range candidates {
		chunk, ok := chunks[c.RowID]
		if !ok {
			continue
		}
		results = append(results, toResult(chunk, bm25Score(c.Rank)))
	}
	sortByScoreDesc(results)
	return truncate(results, limit), nil
}

// SearchVector runs vector-only search, returning empty when the store has
// no vector capability.
func (r *Retriever) SearchVector(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	limit = resolveLimit(limit)
	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	candidates, err := r.store.VectorSearch(queryVec, candidatePoolSize(limit))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ChunkID
	}
	chunks, err := r.store.ChunksByRowIDs(ids)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(candidates))
	for _, c := range candidates {
		chunk, ok := chunks[c.ChunkID]
		if !ok {
			continue
		}
		results = append(results, toResult(chunk, vectorScore(c.Distance)))
	}
	sortByScoreDesc(results)
	return truncate(results, limit), nil
}

// SearchHybrid fuses BM25 and vector scores over the union of candidate
// rowids, filtering anything below MinScore.
func (r *Retriever) SearchHybrid(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	limit = resolveLimit(limit)
	pool := candidatePoolSize(limit)

	bm25Scores := make(map[int64]float64)
	bm25Candidates, err := r.store.SearchChunksFTS(Sanitize(query), pool)
	if err == nil {
		for _, c := range bm25Candidates {
			bm25Scores[c.RowID] = bm25Score(c.Rank)
		}
	} else {
		slog.Warn("hybrid_fts_degraded", slog.String("error", err.Error()))
	}

	vecScores := make(map[int64]float64)
	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err == nil {
		vecCandidates, err := r.store.VectorSearch(queryVec, pool)
		if err == nil {
			for _, c := range vecCandidates {
				vecScores[c.ChunkID] = vectorScore(c.Distance)
			}
		} else {
			slog.Warn("hybrid_vector_degraded", slog.String("error", err.Error()))
		}
	}

	union := make(map[int64]bool, len(bm25Scores)+len(vecScores))
	for id := range bm25Scores {
		union[id] = true
	}
	for id := range vecScores {
		union[id] = true
	}

	type fused struct {
		id    int64
		score float64
	}
	var all []fused
	for id := range union {
		v := vecScores[id]
		b := bm25Scores[id]
		score := config.VectorWeight*v + config.BM25Weight*b
		if score < config.MinScore {
			continue
		}
		all = append(all, fused{id: id, score: score})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].score > all[j].score })
	if len(all) > limit {
		all = all[:limit]
	}

	ids := make([]int64, len(all))
	for i, f := range all {
		ids[i] = f.id
	}
	chunks, err := r.store.ChunksByRowIDs(ids)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(all))
	for _, f := range all {
		chunk, ok := chunks[f.id]
		if !ok {
			continue
		}
		results = append(results, toResult(chunk, f.score))
	}
	return results, nil
}

func toResult(c store.Chunk, score float64) SearchResult {
	return SearchResult{
		ChunkID:   c.ID,
		Text:      c.Text,
		Path:      c.SourcePath,
		Source:    c.Source,
		Score:     score,
		StartLine: c.StartLine,
		EndLine:   c.EndLine,
	}
}

func rowIDsOf(candidates []store.FTSCandidate) []int64 {
	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.RowID
	}
	return ids
}

func sortByScoreDesc(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

func truncate(results []SearchResult, limit int) []SearchResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
