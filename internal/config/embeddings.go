package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvEmbeddingsBaseURL   = "CONCORD_EMBEDDINGS_BASE_URL"
	EnvEmbeddingsToken     = "CONCORD_EMBEDDINGS_TOKEN"
	EnvEmbeddingsModel     = "CONCORD_EMBEDDINGS_MODEL"
	EnvEmbeddingsBatchSize = "CONCORD_EMBEDDINGS_BATCH_SIZE"
	EnvEmbeddingsTimeout   = "CONCORD_EMBEDDINGS_TIMEOUT"
)

// EmbeddingsConfig holds settings for the embedding provider endpoint.
type EmbeddingsConfig struct {
	BaseURL   string `toml:"base_url"`
	Token     string `toml:"token"`
	Model     string `toml:"model"`
	BatchSize int    `toml:"batch_size"`
	MaxChars  int    `toml:"max_chars"`
	Timeout   string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *EmbeddingsConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EmbeddingsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *EmbeddingsConfig) Merge(overlay *EmbeddingsConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.MaxChars != 0 {
		c.MaxChars = overlay.MaxChars
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *EmbeddingsConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "text-embedding-3-small"
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.MaxChars == 0 {
		c.MaxChars = 8000
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}

func (c *EmbeddingsConfig) loadEnv() {
	if v := os.Getenv(EnvEmbeddingsBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvEmbeddingsToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvEmbeddingsModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvEmbeddingsBatchSize); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			c.BatchSize = size
		}
	}
	if v := os.Getenv(EnvEmbeddingsTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *EmbeddingsConfig) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("invalid batch_size: %d", c.BatchSize)
	}
	if c.MaxChars < 1 {
		return fmt.Errorf("invalid max_chars: %d", c.MaxChars)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
