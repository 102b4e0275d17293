package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "expands env var",
			input:  "${TEST_VAR}",
			expect: "test-value",
		},
		{
			name:   "keeps unset var",
			input:  "${UNSET_VAR}",
			expect: "${UNSET_VAR}",
		},
		{
			name:   "expands in string",
			input:  "/data/${TEST_VAR}/cache",
			expect: "/data/test-value/cache",
		},
		{
			name:   "no vars",
			input:  "plain string",
			expect: "plain string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expect {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expect)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")

	content := `
embedding:
  primary:
    provider: "gemini"
    model: "gemini-embedding-001"
    api_key: "test-key"
    dimensions: 768

cache:
  dir: "/tmp/dupscout-test-cache"
  max_entries: 4

defaults:
  threshold: 70
  strategy: "semantic"
`

	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Embedding.Primary.Provider != "gemini" {
		t.Errorf("Embedding.Primary.Provider = %v, want gemini", cfg.Embedding.Primary.Provider)
	}

	if cfg.Cache.Dir != "/tmp/dupscout-test-cache" {
		t.Errorf("Cache.Dir = %v, want /tmp/dupscout-test-cache", cfg.Cache.Dir)
	}

	if cfg.Cache.MaxEntries != 4 {
		t.Errorf("Cache.MaxEntries = %d, want 4", cfg.Cache.MaxEntries)
	}

	if cfg.Defaults.Threshold != 70 {
		t.Errorf("Defaults.Threshold = %v, want 70", cfg.Defaults.Threshold)
	}

	// Defaults should fill unset fields
	if cfg.Defaults.MaxResults != 5 {
		t.Errorf("Defaults.MaxResults = %d, want 5", cfg.Defaults.MaxResults)
	}
	if cfg.Scorer.EditWeight != 0.7 {
		t.Errorf("Scorer.EditWeight = %v, want 0.7", cfg.Scorer.EditWeight)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Defaults.Threshold != 60 {
		t.Errorf("Threshold = %v, want 60", cfg.Defaults.Threshold)
	}

	if cfg.Defaults.MaxResults != 5 {
		t.Errorf("MaxResults = %v, want 5", cfg.Defaults.MaxResults)
	}

	if cfg.Defaults.Strategy != "auto" {
		t.Errorf("Strategy = %v, want auto", cfg.Defaults.Strategy)
	}

	if cfg.Cache.MaxEntries != 16 {
		t.Errorf("Cache.MaxEntries = %v, want 16", cfg.Cache.MaxEntries)
	}

	if cfg.Scorer.EditWeight != 0.7 || cfg.Scorer.TokenWeight != 0.3 {
		t.Errorf("Scorer weights = %v/%v, want 0.7/0.3", cfg.Scorer.EditWeight, cfg.Scorer.TokenWeight)
	}

	if cfg.RateLimits.EmbeddingRPS != 5 {
		t.Errorf("EmbeddingRPS = %v, want 5", cfg.RateLimits.EmbeddingRPS)
	}
}

func TestApplyDefaultsKeepsExplicitWeights(t *testing.T) {
	cfg := &Config{}
	cfg.Scorer.EditWeight = 0.5
	ApplyDefaults(cfg)

	if cfg.Scorer.EditWeight != 0.5 {
		t.Errorf("EditWeight = %v, want 0.5", cfg.Scorer.EditWeight)
	}
	if cfg.Scorer.TokenWeight != 0 {
		t.Errorf("TokenWeight = %v, want 0", cfg.Scorer.TokenWeight)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(cfg *Config) {},
			wantErr: false,
		},
		{
			name: "bad threshold",
			mutate: func(cfg *Config) {
				cfg.Defaults.Threshold = 150
			},
			wantErr: true,
		},
		{
			name: "bad strategy",
			mutate: func(cfg *Config) {
				cfg.Defaults.Strategy = "hybrid"
			},
			wantErr: true,
		},
		{
			name: "unknown provider",
			mutate: func(cfg *Config) {
				cfg.Embedding.Primary.Provider = "bedrock"
				cfg.Embedding.Primary.APIKey = "k"
			},
			wantErr: true,
		},
		{
			name: "provider without key",
			mutate: func(cfg *Config) {
				cfg.Embedding.Primary.Provider = "openai"
			},
			wantErr: true,
		},
		{
			name: "zero weights",
			mutate: func(cfg *Config) {
				cfg.Scorer.EditWeight = 0
				cfg.Scorer.TokenWeight = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := Validate(cfg)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("Validate() errors = %v, wantErr = %v", errs, tt.wantErr)
			}
		})
	}
}
