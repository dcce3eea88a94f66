package similarity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndexTopChunks(t *testing.T) {
	idx := NewMemoryIndex()
	idx.Add([]float32{1, 0}, ChunkHit{DocumentID: "d1", DistrictID: "tx-001"})
	idx.Add([]float32{0.9, 0.1}, ChunkHit{DocumentID: "d2", DistrictID: "tx-002"})
	idx.Add([]float32{0, 1}, ChunkHit{DocumentID: "d3", DistrictID: "ca-001"})

	hits, err := idx.TopChunks(context.Background(), []float32{1, 0}, 10, 0.25)
	require.NoError(t, err)

	require.Len(t, hits, 2) // d3 is orthogonal to the query, below the floor
	assert.Equal(t, "d1", hits[0].DocumentID)
	assert.Equal(t, "d2", hits[1].DocumentID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestMemoryIndexTopChunksLimit(t *testing.T) {
	idx := NewMemoryIndex()
	for _, id := range []string{"a", "b", "c", "d"} {
		idx.Add([]float32{1, 0}, ChunkHit{DocumentID: id})
	}

	hits, err := idx.TopChunks(context.Background(), []float32{1, 0}, 2, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestMemoryIndexFloorExcludesWeakHits(t *testing.T) {
	idx := NewMemoryIndex()
	idx.Add([]float32{1, 0}, ChunkHit{DocumentID: "strong"})
	idx.Add([]float32{0.3, 1}, ChunkHit{DocumentID: "weak"})

	hits, err := idx.TopChunks(context.Background(), []float32{1, 0}, 10, 0.9)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "strong", hits[0].DocumentID)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "weaviate"}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
