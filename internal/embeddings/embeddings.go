// Package embeddings provides embedding generation via multiple providers.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates embedding generation failure. The ranking
	// pipeline treats this as fatal for the whole request.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments generates embeddings for multiple texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds configuration for creating an embedding provider.
type Config struct {
	// Provider is the provider type: "tei" or "openai".
	Provider string
	// BaseURL is the embedding API base URL.
	BaseURL string
	// Model is the embedding model name.
	Model string
	// APIKey is required for OpenAI, optional for TEI.
	APIKey string
	// Timeout bounds a single embedding call.
	Timeout time.Duration
	// MaxRetries is the number of retry attempts for transient failures.
	MaxRetries int
}

// NewEmbedder creates an embedding provider based on the configuration.
func NewEmbedder(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "tei", "":
		return NewTEIService(cfg)
	case "openai":
		return NewOpenAIService(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
