package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDisk struct {
	store map[string][]float32
	gets  int
	puts  int
}

func newFakeDisk() *fakeDisk { return &fakeDisk{store: map[string][]float32{}} }

func (f *fakeDisk) GetCachedEmbedding(textHash, model string) ([]float32, error) {
	f.gets++
	return f.store[textHash], nil
}

func (f *fakeDisk) PutCachedEmbedding(textHash, model string, vector []float32) error {
	f.puts++
	f.store[textHash] = vector
	return nil
}

func TestCachedEmbedderServesMemoryHitWithoutDiskRoundtrip(t *testing.T) {
	disk := newFakeDisk()
	ce := NewCachedEmbedder(NewStaticEmbedder(), 10, disk)
	ctx := context.Background()

	first, err := ce.EmbedQuery(ctx, "repeat me")
	require.NoError(t, err)
	second, err := ce.EmbedQuery(ctx, "repeat me")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, disk.puts)
}

func TestCachedEmbedderBatchSplitsHitsAndMisses(t *testing.T) {
	disk := newFakeDisk()
	ce := NewCachedEmbedder(NewStaticEmbedder(), 10, disk)
	ctx := context.Background()

	_, err := ce.EmbedQuery(ctx, "already cached")
	require.NoError(t, err)

	results, err := ce.EmbedBatch(ctx, []string{"already cached", "brand new"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, disk.puts)
}
