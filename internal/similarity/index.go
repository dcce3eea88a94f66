// Package similarity provides chunk-level similarity retrieval over the
// document index. The ranking pipeline consumes a bounded top-K slice of
// chunk hits; it never scans the full corpus.
package similarity

import (
	"context"
	"errors"
	"fmt"

	"github.com/schoolsignal/rankd/internal/embeddings"
	"go.uber.org/zap"
)

var (
	// ErrIndexUnavailable indicates the similarity index could not be
	// reached. The ranking pipeline treats this as fatal for the request.
	ErrIndexUnavailable = errors.New("similarity index unavailable")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ChunkHit is a single chunk-level similarity result.
type ChunkHit struct {
	// DocumentID identifies the source document chunk.
	DocumentID string
	// DistrictID identifies the district that owns the document.
	DistrictID string
	// Score is the similarity score in [0,1] (higher = more similar).
	Score float64
	// Keyword is the taxonomy keyword the chunk was indexed under, if any.
	Keyword string
	// Excerpt is a short snippet of the chunk text.
	Excerpt string
	// SourceURL is the public URL of the source document, if known.
	SourceURL string
}

// Index retrieves the top-K most similar chunks for a query vector.
type Index interface {
	// TopChunks returns up to k chunk hits with similarity >= floor,
	// ordered by similarity descending.
	TopChunks(ctx context.Context, vector []float32, k int, floor float64) ([]ChunkHit, error)

	// Close releases resources held by the index.
	Close() error
}

// Config holds configuration for creating an index.
type Config struct {
	// Provider selects the backend: "qdrant", "chromem", or "memory".
	Provider string
	Qdrant   QdrantConfig
	Chromem  ChromemConfig
}

// New creates a similarity index based on the configuration.
//
// The embedder is only needed by the chromem backend (chromem stores
// documents alongside their embeddings and embeds at write time).
func New(cfg Config, embedder embeddings.Embedder, logger *zap.Logger) (Index, error) {
	switch cfg.Provider {
	case "qdrant":
		return NewQdrantIndex(cfg.Qdrant, logger)
	case "chromem", "":
		return NewChromemIndex(cfg.Chromem, embedder, logger)
	case "memory":
		return NewMemoryIndex(), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// Payload keys used by index backends for chunk metadata.
const (
	payloadDistrictID = "district_id"
	payloadKeyword    = "keyword"
	payloadExcerpt    = "excerpt"
	payloadSourceURL  = "source_url"
)
