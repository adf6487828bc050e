package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the in-process LRU; at 384 dims * 4 bytes this
// keeps memory under ~1.5MB for the default size.
const DefaultCacheSize = 1000

// CachedEmbedder wraps an Embedder with an in-memory LRU plus an optional
// on-disk backstop, avoiding redundant work across both a single batch and
// across separate invocations of the CLI.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
	disk  DiskCache
}

// DiskCache is the subset of *store.Store this package depends on, kept
// narrow so embed does not import store directly.
type DiskCache interface {
	GetCachedEmbedding(textHash, model string) ([]float32, error)
	PutCachedEmbedding(textHash, model string, vector []float32) error
}

// NewCachedEmbedder wraps inner with an LRU of the given size. disk may be
// nil, in which case only the in-process cache is used.
func NewCachedEmbedder(inner Embedder, cacheSize int, disk DiskCache) *CachedEmbedder {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, _ := lru.New[string, []float32](cacheSize)
	return &CachedEmbedder{inner: inner, cache: cache, disk: disk}
}

func (c *CachedEmbedder) ModelName() string { return c.inner.ModelName() }
func (c *CachedEmbedder) Dimensions() int   { return c.inner.Dimensions() }

func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text + "\x00" + c.inner.ModelName()))
	return hex.EncodeToString(sum[:])
}

// EmbedQuery returns a cached vector when available, otherwise computes and
// caches (memory, then disk) the result.
func (c *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}
	if c.disk != nil {
		if vec, err := c.disk.GetCachedEmbedding(key, c.inner.ModelName()); err == nil && vec != nil {
			c.cache.Add(key, vec)
			return vec, nil
		}
	}
	vec, err := c.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vec)
	if c.disk != nil {
		_ = c.disk.PutCachedEmbedding(key, c.inner.ModelName(), vec)
	}
	return vec, nil
}

// EmbedBatch embeds texts, serving cache hits directly and only calling the
// inner embedder for the uncached remainder, order-preserving.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string
	keys := make([]string, len(texts))

	for i, text := range texts {
		key := c.cacheKey(text)
		keys[i] = key
		if vec, ok := c.cache.Get(key); ok {
			results[i] = vec
			continue
		}
		if c.disk != nil {
			if vec, err := c.disk.GetCachedEmbedding(key, c.inner.ModelName()); err == nil && vec != nil {
				results[i] = vec
				c.cache.Add(key, vec)
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	computed, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		results[idx] = computed[j]
		c.cache.Add(keys[idx], computed[j])
		if c.disk != nil {
			_ = c.disk.PutCachedEmbedding(keys[idx], c.inner.ModelName(), computed[j])
		}
	}
	return results, nil
}
