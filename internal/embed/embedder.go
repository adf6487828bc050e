// Package embed provides the deterministic local embedding capability:
// a stateless, deterministic text -> 384-dim unit vector mapping, with no
// network calls and no model download, so the core stays fully local.
package embed

import (
	"context"
	"math"
	"regexp"
	"strings"
)

// Dimensions is the fixed embedding width the store's vector index and the
// hybrid retriever both assume.
const Dimensions = 384

// ModelName is recorded in the store's meta table at first use; mixing
// models across a single database is undefined behaviour.
const ModelName = "local-deterministic-v1"

// Embedder is the capability contract: batch text -> unit vectors, plus a
// single-text convenience for queries.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	ModelName() string
	Dimensions() int
}

// tokenWeight/ngramWeight/ngramSize mirror the two-signal hashing scheme:
// whole tokens contribute most of the vector's mass, character trigrams
// add robustness to near-duplicate identifiers (camelCase vs snake_case).
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

var stopWords = map[string]bool{
	"func": true, "function": true, "def": true, "class": true,
	"return": true, "import": true, "const": true, "var": true,
	"let": true, "int": true, "string": true, "bool": true,
	"void": true, "true": true, "false": true, "nil": true,
	"null": true, "this": true, "self": true, "new": true,
}

// StaticEmbedder is the deterministic, dependency-free Embedder
// implementation. It never errors and never touches the network.
type StaticEmbedder struct{}

// NewStaticEmbedder returns the default local embedder.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{}
}

func (e *StaticEmbedder) ModelName() string { return ModelName }
func (e *StaticEmbedder) Dimensions() int    { return Dimensions }

// EmbedBatch embeds every text, order-preserving; an empty slice yields an
// empty slice.
func (e *StaticEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedOne(t)
	}
	return out, nil
}

// EmbedQuery embeds a single query string.
func (e *StaticEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return embedOne(text), nil
}

func embedOne(text string) []float32 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, Dimensions)
	}
	vector := make([]float32, Dimensions)

	for _, token := range tokenize(trimmed) {
		vector[hashToIndex(token, Dimensions)] += tokenWeight
	}
	for _, gram := range ngrams(strings.ToLower(trimmed), ngramSize) {
		vector[hashToIndex(gram, Dimensions)] += ngramWeight
	}
	return normalize(vector)
}

func tokenize(text string) []string {
	var tokens []string
	for _, word := range tokenRegex.FindAllString(text, -1) {
		for _, sub := range splitCodeToken(word) {
			lower := strings.ToLower(sub)
			if lower != "" && !stopWords[lower] {
				tokens = append(tokens, lower)
			}
		}
	}
	return tokens
}

func splitCodeToken(token string) []string {
	if strings.Contains(token, "_") {
		var result []string
		for _, part := range strings.Split(token, "_") {
			if part != "" {
				result = append(result, splitCamelCase(part)...)
			}
		}
		return result
	}
	return splitCamelCase(token)
}

func splitCamelCase(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	var current strings.Builder
	for i, r := range s {
		if i > 0 && isUpper(r) && !isUpper(rune(s[i-1])) {
			result = append(result, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func ngrams(s string, n int) []string {
	runes := []rune(strings.ReplaceAll(s, " ", ""))
	if len(runes) < n {
		if len(runes) == 0 {
			return nil
		}
		return []string{string(runes)}
	}
	out := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		out = append(out, string(runes[i:i+n]))
	}
	return out
}

func hashToIndex(s string, dim int) int {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return int(h % uint32(dim))
}

// normalize unit-normalizes a vector so that the store's "1 - cosine
// distance" scoring yields true cosine similarity.
func normalize(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / magnitude)
	}
	return out
}
