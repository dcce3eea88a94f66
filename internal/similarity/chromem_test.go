package similarity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixedEmbedder returns canned unit vectors keyed by text.
type fixedEmbedder struct {
	vectors map[string][]float32
}

func (f *fixedEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0}, nil
}

func (f *fixedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func newChromemForTest(t *testing.T) *ChromemIndex {
	t.Helper()
	emb := &fixedEmbedder{vectors: map[string][]float32{
		"literacy plan":  {1, 0},
		"stadium budget": {0, 1},
	}}
	idx, err := NewChromemIndex(ChromemConfig{Path: t.TempDir(), Collection: "chunks"}, emb, zap.NewNop())
	require.NoError(t, err)
	return idx
}

func TestChromemIndexRoundTrip(t *testing.T) {
	idx := newChromemForTest(t)
	ctx := context.Background()

	hits := []ChunkHit{
		{DocumentID: "doc-a", DistrictID: "a", Keyword: "literacy", Excerpt: "literacy plan", SourceURL: "https://a.example"},
		{DocumentID: "doc-b", DistrictID: "b", Keyword: "athletics"},
	}
	require.NoError(t, idx.AddChunks(ctx, hits, []string{"literacy plan", "stadium budget"}))

	got, err := idx.TopChunks(ctx, []float32{1, 0}, 5, 0.25)
	require.NoError(t, err)
	require.Len(t, got, 1, "orthogonal chunk falls below the floor")
	assert.Equal(t, "doc-a", got[0].DocumentID)
	assert.Equal(t, "a", got[0].DistrictID)
	assert.Equal(t, "literacy", got[0].Keyword)
	assert.Equal(t, "https://a.example", got[0].SourceURL)
	assert.InDelta(t, 1.0, got[0].Score, 1e-4)
}

func TestChromemIndexEmptyCollection(t *testing.T) {
	idx := newChromemForTest(t)

	got, err := idx.TopChunks(context.Background(), []float32{1, 0}, 10, 0.25)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChromemIndexAddChunksLengthMismatch(t *testing.T) {
	idx := newChromemForTest(t)
	err := idx.AddChunks(context.Background(), []ChunkHit{{DocumentID: "doc-a"}}, nil)
	assert.Error(t, err)
}
