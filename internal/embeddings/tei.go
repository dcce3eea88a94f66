package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// TEIService generates embeddings via a Text Embeddings Inference server.
type TEIService struct {
	config  Config
	retry   retryConfig
	client  *http.Client
	logger  *zap.Logger
	metrics *Metrics
}

// NewTEIService creates a TEI-backed embedding service.
func NewTEIService(cfg Config) (*TEIService, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	logger := zap.NewNop()
	return &TEIService{
		config:  cfg,
		retry:   defaultRetryConfig(cfg.MaxRetries),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: NewMetrics(logger),
	}, nil
}

// WithLogger attaches a logger. Call before first use.
func (s *TEIService) WithLogger(logger *zap.Logger) *TEIService {
	s.logger = logger
	s.metrics = NewMetrics(logger)
	return s
}

// teiRequest is the request body for the TEI embed endpoint.
type teiRequest struct {
	Inputs   interface{} `json:"inputs"`
	Truncate bool        `json:"truncate"`
}

// EmbedQuery generates an embedding for a single query.
func (s *TEIService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	var genErr error
	defer func() {
		s.metrics.RecordGeneration(ctx, s.config.Model, "embed_query", time.Since(start), 1, genErr)
	}()

	if text == "" {
		genErr = fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
		return nil, genErr
	}

	var vectors [][]float32
	genErr = retryOperation(ctx, s.retry, s.logger, func() error {
		var err error
		vectors, err = s.embed(ctx, text)
		return err
	})
	if genErr != nil {
		return nil, genErr
	}
	if len(vectors) == 0 {
		genErr = fmt.Errorf("%w: empty response", ErrEmbeddingFailed)
		return nil, genErr
	}
	return vectors[0], nil
}

// EmbedDocuments generates embeddings for multiple texts.
func (s *TEIService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
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
		var err error
		vectors, err = s.embed(ctx, texts)
		return err
	})
	if genErr != nil {
		return nil, genErr
	}
	return vectors, nil
}

// embed posts inputs to the TEI /embed endpoint. 4xx responses are
// permanent; network errors and 5xx responses are retried.
func (s *TEIService) embed(ctx context.Context, inputs interface{}) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	body, err := json.Marshal(teiRequest{Inputs: inputs, Truncate: true})
	if err != nil {
		return nil, permanent(fmt.Errorf("marshaling request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, permanent(fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		wrapped := fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailed, resp.StatusCode, string(respBody))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, permanent(wrapped)
		}
		return nil, wrapped
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return vectors, nil
}
