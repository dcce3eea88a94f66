package similarity

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// QdrantConfig configures the Qdrant gRPC index.
type QdrantConfig struct {
	// Host is the Qdrant server hostname or IP address.
	Host string
	// Port is the Qdrant gRPC port (6334, not the 6333 HTTP port).
	Port int
	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
	// APIKey is the optional API key for authentication.
	APIKey string
	// Collection is the chunk collection to query.
	Collection string
	// RequestTimeout bounds individual requests.
	RequestTimeout time.Duration
	// RetryAttempts is the number of retry attempts for transient failures.
	RetryAttempts int
}

func (c *QdrantConfig) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Collection == "" {
		c.Collection = "district_documents"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
}

// QdrantIndex queries a Qdrant collection of document chunks over gRPC.
type QdrantIndex struct {
	client *qdrant.Client
	config QdrantConfig
	logger *zap.Logger
}

// NewQdrantIndex creates a Qdrant-backed similarity index and verifies
// connectivity with a health check.
func NewQdrantIndex(cfg QdrantConfig, logger *zap.Logger) (*QdrantIndex, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ErrInvalidConfig)
	}
	cfg.applyDefaults()

	qdrantConfig := &qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: cfg.UseTLS,
		APIKey: cfg.APIKey,
	}
	if !cfg.UseTLS {
		qdrantConfig.GrpcOptions = append(qdrantConfig.GrpcOptions,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
	}

	client, err := qdrant.NewClient(qdrantConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: creating client: %v", ErrIndexUnavailable, err)
	}

	idx := &QdrantIndex{client: client, config: cfg, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: health check: %v", ErrIndexUnavailable, err)
	}

	logger.Info("qdrant connection established",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("collection", cfg.Collection),
	)
	return idx, nil
}

// TopChunks returns up to k chunk hits with similarity >= floor.
func (x *QdrantIndex) TopChunks(ctx context.Context, vector []float32, k int, floor float64) ([]ChunkHit, error) {
	ctx, cancel := context.WithTimeout(ctx, x.config.RequestTimeout)
	defer cancel()

	var results []*qdrant.ScoredPoint
	err := x.retryOperation(ctx, func() error {
		res, err := x.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: x.config.Collection,
			Query:          qdrant.NewQuery(vector...),
			Limit:          qdrant.PtrOf(uint64(k)),
			ScoreThreshold: qdrant.PtrOf(float32(floor)),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return err
		}
		results = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	hits := make([]ChunkHit, 0, len(results))
	for _, p := range results {
		hits = append(hits, ChunkHit{
			DocumentID: extractPointID(p.Id),
			DistrictID: payloadString(p.Payload, payloadDistrictID),
			Score:      float64(p.Score),
			Keyword:    payloadString(p.Payload, payloadKeyword),
			Excerpt:    payloadString(p.Payload, payloadExcerpt),
			SourceURL:  payloadString(p.Payload, payloadSourceURL),
		})
	}
	return hits, nil
}

// Close closes the client connection.
func (x *QdrantIndex) Close() error {
	if x.client != nil {
		return x.client.Close()
	}
	return nil
}

// retryOperation retries an operation with exponential backoff for
// transient gRPC failures.
func (x *QdrantIndex) retryOperation(ctx context.Context, operation func() error) error {
	var lastErr error
	backoff := time.Second

	for attempt := 0; attempt <= x.config.RetryAttempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isTransientError(err) {
			return err
		}
		if attempt == x.config.RetryAttempts {
			break
		}

		x.logger.Debug("retrying qdrant query after transient error",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("operation canceled: %w", ctx.Err())
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return fmt.Errorf("operation failed after %d retries: %w", x.config.RetryAttempts, lastErr)
}

// isTransientError checks if an error is transient and should be retried.
func isTransientError(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}

func extractPointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	if num := id.GetNum(); num != 0 {
		return fmt.Sprintf("%d", num)
	}
	return ""
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	return v.GetStringValue()
}

var _ Index = (*QdrantIndex)(nil)
