package similarity

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory similarity index using exact cosine
// similarity. Intended for tests and local development fixtures.
type MemoryIndex struct {
	mu     sync.RWMutex
	chunks []memoryChunk
}

type memoryChunk struct {
	vector []float32
	hit    ChunkHit
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Add indexes a chunk with its embedding vector.
func (x *MemoryIndex) Add(vector []float32, hit ChunkHit) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.chunks = append(x.chunks, memoryChunk{vector: vector, hit: hit})
}

// TopChunks returns up to k chunk hits with cosine similarity >= floor,
// ordered by similarity descending.
func (x *MemoryIndex) TopChunks(ctx context.Context, vector []float32, k int, floor float64) ([]ChunkHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := make([]ChunkHit, 0, len(x.chunks))
	for _, c := range x.chunks {
		score := cosineSimilarity(vector, c.vector)
		if score < floor {
			continue
		}
		hit := c.hit
		hit.Score = score
		hits = append(hits, hit)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close is a no-op.
func (x *MemoryIndex) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched lengths or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ Index = (*MemoryIndex)(nil)
