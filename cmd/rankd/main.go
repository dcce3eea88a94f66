// Rankd is the ranking and explainability daemon behind the district
// dashboard's command search.
//
// It classifies prompt intent, retrieves semantic evidence from a vector
// index, blends it with static taxonomy scores, and serves ranked
// districts with per-result rationales over HTTP.
//
// Configuration is loaded from an optional YAML file plus environment
// variable overrides. See internal/config for details.
//
// Usage:
//
//	# Start with defaults (chromem index, TEI embeddings)
//	rankd
//
//	# Configure via environment
//	SERVER_PORT=9040 INDEX_PROVIDER=qdrant rankd
//
//	# Load a config file and a development seed registry
//	rankd -config rankd.yaml -seed districts.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/schoolsignal/rankd/internal/audit"
	"github.com/schoolsignal/rankd/internal/config"
	"github.com/schoolsignal/rankd/internal/embeddings"
	httpapi "github.com/schoolsignal/rankd/internal/http"
	"github.com/schoolsignal/rankd/internal/logging"
	"github.com/schoolsignal/rankd/internal/ranking"
	"github.com/schoolsignal/rankd/internal/registry"
	"github.com/schoolsignal/rankd/internal/similarity"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	seedPath := flag.String("seed", "", "path to JSON registry seed file (development)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("rankd\nVersion:    %s\nCommit:     %s\nBuild Date: %s\n", version, gitCommit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath, *seedPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// run starts the rankd server and blocks until context cancellation.
//
//  1. Loads and validates configuration
//  2. Initializes the structured logger
//  3. Connects infrastructure (embedder, similarity index, NATS audit)
//  4. Wires the ranking pipeline
//  5. Starts the HTTP server and shuts it down gracefully
func run(ctx context.Context, configPath, seedPath string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:   cfg.Observability.LogLevel,
		Format:  cfg.Observability.LogFormat,
		Service: cfg.Observability.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info("Starting rankd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

	deps, err := initDependencies(cfg, seedPath, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	logger.Info("Dependencies initialized",
		zap.String("embeddings_provider", cfg.Embeddings.Provider),
		zap.String("index_provider", cfg.Index.Provider),
		zap.Bool("audit_enabled", cfg.Audit.Enabled))

	meter := otel.Meter("github.com/schoolsignal/rankd/internal/ranking")
	pipeline := ranking.NewPipeline(
		ranking.Config{
			TopK:                 cfg.Ranking.TopK,
			SimilarityFloor:      cfg.Ranking.SimilarityFloor,
			DefaultLimit:         cfg.Ranking.DefaultLimit,
			FullExplanationDepth: cfg.Ranking.FullExplanationDepth,
			BriefingLimit:        cfg.Ranking.BriefingLimit,
			RetrievalTimeout:     cfg.Ranking.RetrievalTimeout,
		},
		deps.embedder,
		deps.index,
		deps.store,
		deps.store,
		ranking.WithLogger(logger),
		ranking.WithMetrics(ranking.NewMetrics(meter, logger)),
		ranking.WithPublisher(deps.publisher),
	)

	srv, err := httpapi.NewServer(pipeline, logger, &httpapi.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}
	srv.UseMetrics(httpapi.NewHTTPMetrics(logger))

	logger.Info("Server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://%s:%d/health", cfg.Server.Host, cfg.Server.Port)),
		zap.String("search_endpoint", "/api/v1/search"),
		zap.String("metrics_endpoint", "/metrics"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// dependencies holds all infrastructure collaborators.
type dependencies struct {
	embedder  embeddings.Embedder
	index     similarity.Index
	store     *registry.MemoryStore
	publisher audit.Publisher
	logger    *zap.Logger
}

// Close releases infrastructure resources.
func (d *dependencies) Close() {
	if d.index != nil {
		if err := d.index.Close(); err != nil {
			d.logger.Warn("failed to close similarity index", zap.Error(err))
		}
	}
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			d.logger.Warn("failed to close audit publisher", zap.Error(err))
		}
	}
}

func initDependencies(cfg *config.Config, seedPath string, logger *zap.Logger) (*dependencies, error) {
	embedder, err := embeddings.NewEmbedder(embeddings.Config{
		Provider:   cfg.Embeddings.Provider,
		BaseURL:    cfg.Embeddings.BaseURL,
		Model:      cfg.Embeddings.Model,
		APIKey:     cfg.Embeddings.APIKey,
		Timeout:    cfg.Embeddings.Timeout,
		MaxRetries: cfg.Embeddings.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding service: %w", err)
	}

	logger.Info("Embedding service initialized",
		zap.String("base_url", cfg.Embeddings.BaseURL),
		zap.String("model", cfg.Embeddings.Model))

	index, err := similarity.New(similarity.Config{
		Provider: cfg.Index.Provider,
		Qdrant: similarity.QdrantConfig{
			Host:           cfg.Index.Qdrant.Host,
			Port:           cfg.Index.Qdrant.Port,
			UseTLS:         cfg.Index.Qdrant.UseTLS,
			APIKey:         cfg.Index.Qdrant.APIKey,
			Collection:     cfg.Index.Qdrant.Collection,
			RequestTimeout: cfg.Index.Qdrant.RequestTimeout,
			RetryAttempts:  cfg.Index.Qdrant.RetryAttempts,
		},
		Chromem: similarity.ChromemConfig{
			Path:       cfg.Index.Chromem.Path,
			Collection: cfg.Index.Chromem.Collection,
			Compress:   cfg.Index.Chromem.Compress,
		},
	}, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create similarity index: %w", err)
	}

	store := registry.NewMemoryStore()
	if seedPath != "" {
		if err := store.LoadFile(seedPath); err != nil {
			return nil, fmt.Errorf("failed to load registry seed: %w", err)
		}
		logger.Info("Registry seeded", zap.String("path", seedPath))
	}

	var publisher audit.Publisher = audit.NopPublisher{}
	if cfg.Audit.Enabled {
		publisher, err = audit.NewNATSPublisher(cfg.Audit.NATSURL, cfg.Audit.Subject, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create audit publisher: %w", err)
		}
		logger.Info("Audit publisher connected",
			zap.String("url", cfg.Audit.NATSURL),
			zap.String("subject", cfg.Audit.Subject))
	}

	return &dependencies{
		embedder:  embedder,
		index:     index,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}, nil
}
