package similarity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"github.com/schoolsignal/rankd/internal/embeddings"
	"go.uber.org/zap"
)

// ChromemConfig configures the embedded chromem-go index.
type ChromemConfig struct {
	// Path is the persistence directory. Supports ~ expansion.
	Path string
	// Collection is the chunk collection name.
	Collection string
	// Compress enables gzip compression of persisted collections.
	Compress bool
}

// ChromemIndex is an embedded similarity index backed by chromem-go.
// Useful for development and single-node deployments without Qdrant.
type ChromemIndex struct {
	db       *chromem.DB
	config   ChromemConfig
	embedder embeddings.Embedder
	logger   *zap.Logger
}

// NewChromemIndex opens (or creates) a persistent chromem database.
func NewChromemIndex(cfg ChromemConfig, embedder embeddings.Embedder, logger *zap.Logger) (*ChromemIndex, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ErrInvalidConfig)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if cfg.Collection == "" {
		cfg.Collection = "district_documents"
	}

	path, err := expandPath(cfg.Path)
	if err != nil {
		return nil, err
	}

	db, err := chromem.NewPersistentDB(path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("%w: opening chromem db: %v", ErrIndexUnavailable, err)
	}

	logger.Info("chromem index opened",
		zap.String("path", path),
		zap.String("collection", cfg.Collection),
	)
	return &ChromemIndex{db: db, config: cfg, embedder: embedder, logger: logger}, nil
}

// embeddingFunc adapts the Embedder interface to chromem's callback.
func (x *ChromemIndex) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return x.embedder.EmbedQuery(ctx, text)
	}
}

// TopChunks returns up to k chunk hits with similarity >= floor.
func (x *ChromemIndex) TopChunks(ctx context.Context, vector []float32, k int, floor float64) ([]ChunkHit, error) {
	collection := x.db.GetCollection(x.config.Collection, x.embeddingFunc())
	if collection == nil {
		// No documents indexed yet: legitimately zero hits, not a failure.
		return []ChunkHit{}, nil
	}

	// chromem requires nResults <= document count.
	count := collection.Count()
	if count == 0 {
		return []ChunkHit{}, nil
	}
	if k > count {
		k = count
	}

	results, err := collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: querying collection: %v", ErrIndexUnavailable, err)
	}

	hits := make([]ChunkHit, 0, len(results))
	for _, r := range results {
		score := float64(r.Similarity)
		if score < floor {
			continue
		}
		hits = append(hits, ChunkHit{
			DocumentID: r.ID,
			DistrictID: r.Metadata[payloadDistrictID],
			Score:      score,
			Keyword:    r.Metadata[payloadKeyword],
			Excerpt:    r.Metadata[payloadExcerpt],
			SourceURL:  r.Metadata[payloadSourceURL],
		})
	}
	return hits, nil
}

// AddChunks indexes document chunks. Used by the fixture loader and by
// ingestion tooling; the ranking pipeline itself never writes.
func (x *ChromemIndex) AddChunks(ctx context.Context, hits []ChunkHit, contents []string) error {
	if len(hits) != len(contents) {
		return fmt.Errorf("%w: %d hits but %d contents", ErrInvalidConfig, len(hits), len(contents))
	}
	collection, err := x.db.GetOrCreateCollection(x.config.Collection, nil, x.embeddingFunc())
	if err != nil {
		return fmt.Errorf("getting/creating collection: %w", err)
	}

	vectors, err := x.embedder.EmbedDocuments(ctx, contents)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}

	docs := make([]chromem.Document, len(hits))
	for i, h := range hits {
		docs[i] = chromem.Document{
			ID:      h.DocumentID,
			Content: contents[i],
			Metadata: map[string]string{
				payloadDistrictID: h.DistrictID,
				payloadKeyword:    h.Keyword,
				payloadExcerpt:    h.Excerpt,
				payloadSourceURL:  h.SourceURL,
			},
			Embedding: vectors[i],
		}
	}
	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding chunks: %w", err)
	}
	return nil
}

// Close is a no-op; chromem persists on write.
func (x *ChromemIndex) Close() error {
	return nil
}

// expandPath expands a leading ~ to the user home directory.
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding path %q: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

var _ Index = (*ChromemIndex)(nil)
