package embeddings

import (
	"context"
	"fmt"
	"time"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// OpenAIService generates embeddings via an OpenAI-compatible API using
// langchaingo. Works against both api.openai.com and self-hosted
// OpenAI-compatible endpoints.
type OpenAIService struct {
	config   Config
	retry    retryConfig
	embedder *lcembeddings.EmbedderImpl
	logger   *zap.Logger
	metrics  *Metrics
}

// NewOpenAIService creates an OpenAI-backed embedding service.
func NewOpenAIService(cfg Config) (*OpenAIService, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		// langchaingo requires a token even for endpoints that ignore it.
		apiKey = "placeholder"
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	embedder, err := lcembeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	logger := zap.NewNop()
	return &OpenAIService{
		config:   cfg,
		retry:    defaultRetryConfig(cfg.MaxRetries),
		embedder: embedder,
		logger:   logger,
		metrics:  NewMetrics(logger),
	}, nil
}

// WithLogger attaches a logger. Call before first use.
func (s *OpenAIService) WithLogger(logger *zap.Logger) *OpenAIService {
	s.logger = logger
	s.metrics = NewMetrics(logger)
	return s
}

// EmbedQuery generates an embedding for a single query.
func (s *OpenAIService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	var genErr error
	defer func() {
		s.metrics.RecordGeneration(ctx, s.config.Model, "embed_query", time.Since(start), 1, genErr)
	}()

	if text == "" {
		genErr = fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
		return nil, genErr
	}

	var vector []float32
	genErr = retryOperation(ctx, s.retry, s.logger, func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()

		v, err := s.embedder.EmbedQuery(callCtx, text)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
		}
		vector = v
		return nil
	})
	if genErr != nil {
		return nil, genErr
	}
	return vector, nil
}

// EmbedDocuments generates embeddings for multiple texts.
func (s *OpenAIService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	var genErr error
	defer func() {
		s.metrics.RecordGeneration(ctx, s.config.Model, "embed_documents", time.Since(start), len(texts), genErr)
	}()

	if len(texts) == 0 {
		genErr = fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
		return nil, genErr
	}

	var vectors [][]float32
	genErr = retryOperation(ctx, s.retry, s.logger, func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()

		v, err := s.embedder.EmbedDocuments(callCtx, texts)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
		}
		vectors = v
		return nil
	})
	if genErr != nil {
		return nil, genErr
	}
	return vectors, nil
}
