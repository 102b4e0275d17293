package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the full application configuration
type Config struct {
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Cache      CacheConfig      `yaml:"cache"`
	Scorer     ScorerConfig     `yaml:"scorer"`
	Defaults   DefaultsConfig   `yaml:"defaults"`
	RateLimits RateLimitsConfig `yaml:"rate_limits"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts"`
}

// EmbeddingConfig contains embedding provider settings
type EmbeddingConfig struct {
	Primary  ProviderConfig `yaml:"primary"`
	Fallback ProviderConfig `yaml:"fallback"`
}

// ProviderConfig contains settings for an embedding provider
type ProviderConfig struct {
	Provider   string `yaml:"provider"` // "gemini" or "openai"
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
}

// CacheConfig contains embedding cache settings
type CacheConfig struct {
	Dir        string `yaml:"dir"`
	MaxEntries int    `yaml:"max_entries"`
	MaxBytes   int64  `yaml:"max_bytes"`
	// PersistRequired makes cache write failures fatal to the request
	// instead of degrading to recompute-without-cache.
	PersistRequired bool `yaml:"persist_required"`
}

// ScorerConfig contains lexical scorer weights
type ScorerConfig struct {
	EditWeight  float64 `yaml:"edit_weight"`
	TokenWeight float64 `yaml:"token_weight"`
	// ExtraStopwords are removed from token overlap in addition to the
	// built-in stopword set.
	ExtraStopwords []string `yaml:"extra_stopwords,omitempty"`
}

// DefaultsConfig contains default behavior settings
type DefaultsConfig struct {
	Threshold  float64 `yaml:"threshold"`
	MaxResults int     `yaml:"max_results"`
	Strategy   string  `yaml:"strategy"`
	StrictIDs  bool    `yaml:"strict_ids"`
}

// RateLimitsConfig contains rate limiting settings
type RateLimitsConfig struct {
	EmbeddingRPS int `yaml:"embedding_requests_per_second"`
}

// TimeoutsConfig bounds slow external operations
type TimeoutsConfig struct {
	EmbedSeconds int `yaml:"embed_seconds"`
}

// Load reads and parses config from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(&cfg)
	ApplyDefaults(&cfg)

	return &cfg, nil
}

// Default returns a config with all defaults applied and no providers set.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// FindConfigPath looks for config in common locations
func FindConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	paths := []string{
		"dupscout.yaml",
		"dupscout.yml",
		".dupscout.yaml",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(home, ".config", "dupscout", "config.yaml")
		if _, err := os.Stat(homePath); err == nil {
			return homePath
		}
	}

	return ""
}

// ApplyDefaults sets default values for unset fields
func ApplyDefaults(cfg *Config) {
	if cfg.Cache.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(home, ".cache", "dupscout")
		} else {
			cfg.Cache.Dir = "cache"
		}
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 16
	}
	if cfg.Cache.MaxBytes == 0 {
		cfg.Cache.MaxBytes = 256 << 20 // 256 MiB
	}
	if cfg.Scorer.EditWeight == 0 && cfg.Scorer.TokenWeight == 0 {
		cfg.Scorer.EditWeight = 0.7
		cfg.Scorer.TokenWeight = 0.3
	}
	if cfg.Defaults.Threshold == 0 {
		cfg.Defaults.Threshold = 60
	}
	if cfg.Defaults.MaxResults == 0 {
		cfg.Defaults.MaxResults = 5
	}
	if cfg.Defaults.Strategy == "" {
		cfg.Defaults.Strategy = "auto"
	}
	if cfg.RateLimits.EmbeddingRPS == 0 {
		cfg.RateLimits.EmbeddingRPS = 5
	}
	if cfg.Timeouts.EmbedSeconds == 0 {
		cfg.Timeouts.EmbedSeconds = 60
	}
	if cfg.Embedding.Primary.Dimensions == 0 {
		cfg.Embedding.Primary.Dimensions = 768
	}
	if cfg.Embedding.Fallback.Dimensions == 0 {
		cfg.Embedding.Fallback.Dimensions = 768
	}
}
