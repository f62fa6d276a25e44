package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()

	v1, err := e.Embed(ctx, "vectors for the same text")
	require.NoError(t, err)
	v2, err := e.Embed(ctx, "vectors for the same text")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Len(t, v1, 64)
}

func TestHashEmbedder_DistinctTexts(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()

	v1, err := e.Embed(ctx, "cats sit on mats")
	require.NoError(t, err)
	v2, err := e.Embed(ctx, "distributed consensus protocols")
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
}

func TestHashEmbedder_Normalized(t *testing.T) {
	e := NewHashEmbedder(32)
	vec, err := e.Embed(context.Background(), "some words to embed here")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestHashEmbedder_EmptyTextZeroVector(t *testing.T) {
	e := NewHashEmbedder(32)
	vec, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}
