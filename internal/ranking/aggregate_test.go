package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schoolsignal/rankd/internal/similarity"
)

func TestAggregateChunks(t *testing.T) {
	hits := []similarity.ChunkHit{
		{DocumentID: "d1", DistrictID: "a", Score: 0.9},
		{DocumentID: "d2", DistrictID: "a", Score: 0.5},
		{DocumentID: "d3", DistrictID: "a", Score: 0.7},
		{DocumentID: "d4", DistrictID: "b", Score: 0.3},
		{DocumentID: "d5", DistrictID: "", Score: 0.99},
	}

	aggs := AggregateChunks(hits)
	assert.Len(t, aggs, 2)

	a := aggs["a"]
	assert.InDelta(t, 0.9, a.MaxSimilarity, 1e-9)
	assert.InDelta(t, (0.9+0.5+0.7)/3, a.AvgSimilarity, 1e-9)
	assert.Equal(t, 3, a.HitCount)

	b := aggs["b"]
	assert.InDelta(t, 0.3, b.MaxSimilarity, 1e-9)
	assert.Equal(t, 1, b.HitCount)
}

func TestAggregateChunksEmpty(t *testing.T) {
	assert.Empty(t, AggregateChunks(nil))
}
