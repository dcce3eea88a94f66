package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path string, content []byte) error {
	return os.WriteFile(path, content, 0600)
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9040, cfg.Server.Port)
	assert.Equal(t, "rankd", cfg.Observability.ServiceName)
	assert.Equal(t, "tei", cfg.Embeddings.Provider)
	assert.Equal(t, 500, cfg.Ranking.TopK)
	assert.InDelta(t, 0.25, cfg.Ranking.SimilarityFloor, 1e-9)
	assert.Equal(t, 25, cfg.Ranking.DefaultLimit)
	assert.Equal(t, 25, cfg.Ranking.FullExplanationDepth)
	assert.Equal(t, 10, cfg.Ranking.BriefingLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero shutdown timeout",
			mutate:  func(c *Config) { c.Server.ShutdownTimeout = 0 },
			wantErr: "shutdown timeout",
		},
		{
			name:    "unknown embeddings provider",
			mutate:  func(c *Config) { c.Embeddings.Provider = "cohere" },
			wantErr: "unknown embeddings provider",
		},
		{
			name:    "openai without api key",
			mutate:  func(c *Config) { c.Embeddings.Provider = "openai" },
			wantErr: "api key required",
		},
		{
			name:    "unknown index provider",
			mutate:  func(c *Config) { c.Index.Provider = "pinecone" },
			wantErr: "unknown index provider",
		},
		{
			name:    "negative top k",
			mutate:  func(c *Config) { c.Ranking.TopK = -1 },
			wantErr: "top_k must be positive",
		},
		{
			name:    "similarity floor too high",
			mutate:  func(c *Config) { c.Ranking.SimilarityFloor = 1.5 },
			wantErr: "similarity floor",
		},
		{
			name:    "audit enabled without nats url",
			mutate:  func(c *Config) { c.Audit.Enabled = true },
			wantErr: "nats url required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	content := []byte(`
server:
  port: 9999
ranking:
  top_k: 100
  similarity_floor: 0.4
`)
	require.NoError(t, writeFile(path, content))

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Ranking.TopK)
	assert.InDelta(t, 0.4, cfg.Ranking.SimilarityFloor, 1e-9)
	// Untouched fields keep defaults.
	assert.Equal(t, 10*time.Second, cfg.Embeddings.Timeout)
	assert.Equal(t, "chromem", cfg.Index.Provider)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	require.NoError(t, writeFile(path, []byte("server:\n  port: 9999\n")))

	t.Setenv("SERVER_PORT", "8040")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8040, cfg.Server.Port)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadWithFile(t.TempDir() + "/does-not-exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, 9040, cfg.Server.Port)
}
