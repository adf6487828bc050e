package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedBatchIsOrderPreservingAndDeterministic(t *testing.T) {
	e := NewStaticEmbedder()
	ctx := context.Background()

	texts := []string{"hello world", "goodbye world"}
	first, err := e.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	second, err := e.EmbedBatch(ctx, texts)
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first[0], first[1])
}

func TestEmbedBatchEmptyInputYieldsEmptyOutput(t *testing.T) {
	e := NewStaticEmbedder()
	out, err := e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestEmbedProducesUnitVector(t *testing.T) {
	e := NewStaticEmbedder()
	vec, err := e.EmbedQuery(context.Background(), "some query text")
	require.NoError(t, err)
	require.Len(t, vec, Dimensions)

	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sumSquares, 1e-4)
}

func TestEmbedEmptyTextYieldsZeroVector(t *testing.T) {
	e := NewStaticEmbedder()
	vec, err := e.EmbedQuery(context.Background(), "   ")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Equal(t, float32(0), v)
	}
}
