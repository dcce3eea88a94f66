// Package config provides configuration loading for rankd.
//
// Configuration is loaded from a YAML file with environment variable
// overrides and sensible defaults. See loader.go for precedence rules.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete rankd configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Observability ObservabilityConfig `koanf:"observability"`
	Embeddings    EmbeddingsConfig    `koanf:"embeddings"`
	Index         IndexConfig         `koanf:"index"`
	Ranking       RankingConfig       `koanf:"ranking"`
	Audit         AuditConfig         `koanf:"audit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ObservabilityConfig holds logging and telemetry configuration.
type ObservabilityConfig struct {
	ServiceName     string `koanf:"service_name"`
	LogLevel        string `koanf:"log_level"`
	LogFormat       string `koanf:"log_format"` // "json" or "console"
	EnableTelemetry bool   `koanf:"enable_telemetry"`
}

// EmbeddingsConfig holds embedding provider configuration.
type EmbeddingsConfig struct {
	// Provider selects the embedding backend: "tei" or "openai".
	Provider string `koanf:"provider"`
	// BaseURL is the embedding API base URL.
	// For TEI: http://localhost:8080. For OpenAI-compatible APIs: https://api.openai.com/v1.
	BaseURL string `koanf:"base_url"`
	// Model is the embedding model name.
	Model string `koanf:"model"`
	// APIKey is required for OpenAI, optional for TEI.
	APIKey string `koanf:"api_key"`
	// Timeout bounds a single embedding call. Embedding latency dominates
	// end-to-end request time, so a timeout here is fatal for the request.
	Timeout time.Duration `koanf:"timeout"`
	// MaxRetries is the number of retry attempts for transient failures.
	MaxRetries int `koanf:"max_retries"`
}

// IndexConfig holds similarity index configuration.
type IndexConfig struct {
	// Provider selects the index backend: "qdrant", "chromem", or "memory".
	Provider string        `koanf:"provider"`
	Qdrant   QdrantConfig  `koanf:"qdrant"`
	Chromem  ChromemConfig `koanf:"chromem"`
}

// QdrantConfig holds Qdrant gRPC client configuration.
type QdrantConfig struct {
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	UseTLS         bool          `koanf:"use_tls"`
	APIKey         string        `koanf:"api_key"`
	Collection     string        `koanf:"collection"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	RetryAttempts  int           `koanf:"retry_attempts"`
}

// ChromemConfig holds embedded chromem-go store configuration.
type ChromemConfig struct {
	Path       string `koanf:"path"`
	Collection string `koanf:"collection"`
	Compress   bool   `koanf:"compress"`
}

// RankingConfig holds ranking pipeline configuration.
type RankingConfig struct {
	// TopK bounds chunk retrieval from the similarity index. Bounding
	// retrieval is what keeps the semantic signal query-specific; without
	// it static keyword scores dominate every query's ranking.
	TopK int `koanf:"top_k"`
	// SimilarityFloor is the minimum chunk similarity considered a hit.
	SimilarityFloor float64 `koanf:"similarity_floor"`
	// DefaultLimit is the result count when the caller does not specify one.
	DefaultLimit int `koanf:"default_limit"`
	// FullExplanationDepth is the rank beyond which results carry a
	// placeholder rationale instead of a fully computed one.
	FullExplanationDepth int `koanf:"full_explanation_depth"`
	// BriefingLimit caps the main list for insights briefings.
	BriefingLimit int `koanf:"briefing_limit"`
	// RetrievalTimeout bounds the top-K index query.
	RetrievalTimeout time.Duration `koanf:"retrieval_timeout"`
}

// AuditConfig holds reasoning-trace audit publishing configuration.
type AuditConfig struct {
	Enabled bool   `koanf:"enabled"`
	NATSURL string `koanf:"nats_url"`
	Subject string `koanf:"subject"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Observability.ServiceName == "" {
		return errors.New("service name is required")
	}
	switch c.Embeddings.Provider {
	case "tei", "openai":
	default:
		return fmt.Errorf("unknown embeddings provider: %q", c.Embeddings.Provider)
	}
	if c.Embeddings.BaseURL == "" {
		return errors.New("embeddings base URL is required")
	}
	if c.Embeddings.Provider == "openai" && c.Embeddings.APIKey == "" {
		return errors.New("api key required for openai embeddings provider")
	}
	switch c.Index.Provider {
	case "qdrant", "chromem", "memory":
	default:
		return fmt.Errorf("unknown index provider: %q", c.Index.Provider)
	}
	if c.Ranking.TopK <= 0 {
		return errors.New("ranking top_k must be positive")
	}
	if c.Ranking.SimilarityFloor < 0 || c.Ranking.SimilarityFloor >= 1 {
		return fmt.Errorf("similarity floor %v out of range [0,1)", c.Ranking.SimilarityFloor)
	}
	if c.Audit.Enabled && c.Audit.NATSURL == "" {
		return errors.New("nats url required when audit publishing is enabled")
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9040
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "rankd"
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	if cfg.Observability.LogFormat == "" {
		cfg.Observability.LogFormat = "json"
	}

	if cfg.Embeddings.Provider == "" {
		cfg.Embeddings.Provider = "tei"
	}
	if cfg.Embeddings.BaseURL == "" {
		cfg.Embeddings.BaseURL = "http://localhost:8080"
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "BAAI/bge-small-en-v1.5"
	}
	if cfg.Embeddings.Timeout == 0 {
		cfg.Embeddings.Timeout = 10 * time.Second
	}
	if cfg.Embeddings.MaxRetries == 0 {
		cfg.Embeddings.MaxRetries = 3
	}

	if cfg.Index.Provider == "" {
		cfg.Index.Provider = "chromem"
	}
	if cfg.Index.Qdrant.Host == "" {
		cfg.Index.Qdrant.Host = "localhost"
	}
	if cfg.Index.Qdrant.Port == 0 {
		cfg.Index.Qdrant.Port = 6334
	}
	if cfg.Index.Qdrant.Collection == "" {
		cfg.Index.Qdrant.Collection = "district_documents"
	}
	if cfg.Index.Qdrant.RequestTimeout == 0 {
		cfg.Index.Qdrant.RequestTimeout = 10 * time.Second
	}
	if cfg.Index.Qdrant.RetryAttempts == 0 {
		cfg.Index.Qdrant.RetryAttempts = 3
	}
	if cfg.Index.Chromem.Path == "" {
		cfg.Index.Chromem.Path = "~/.config/rankd/index"
	}
	if cfg.Index.Chromem.Collection == "" {
		cfg.Index.Chromem.Collection = "district_documents"
	}

	if cfg.Ranking.TopK == 0 {
		cfg.Ranking.TopK = 500
	}
	if cfg.Ranking.SimilarityFloor == 0 {
		cfg.Ranking.SimilarityFloor = 0.25
	}
	if cfg.Ranking.DefaultLimit == 0 {
		cfg.Ranking.DefaultLimit = 25
	}
	if cfg.Ranking.FullExplanationDepth == 0 {
		cfg.Ranking.FullExplanationDepth = 25
	}
	if cfg.Ranking.BriefingLimit == 0 {
		cfg.Ranking.BriefingLimit = 10
	}
	if cfg.Ranking.RetrievalTimeout == 0 {
		cfg.Ranking.RetrievalTimeout = 10 * time.Second
	}

	if cfg.Audit.Subject == "" {
		cfg.Audit.Subject = "rankd.search.trace"
	}
}
