package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors
func Validate(cfg *Config) []error {
	var errs []error

	// Validate embedding providers. An empty primary is legal: the engine
	// then runs lexical-only and semantic requests degrade.
	errs = append(errs, validateProvider("embedding.primary", &cfg.Embedding.Primary)...)
	errs = append(errs, validateProvider("embedding.fallback", &cfg.Embedding.Fallback)...)

	if cfg.Scorer.EditWeight < 0 {
		errs = append(errs, ValidationError{"scorer.edit_weight", "must be non-negative"})
	}
	if cfg.Scorer.TokenWeight < 0 {
		errs = append(errs, ValidationError{"scorer.token_weight", "must be non-negative"})
	}
	if cfg.Scorer.EditWeight == 0 && cfg.Scorer.TokenWeight == 0 {
		errs = append(errs, ValidationError{"scorer", "edit_weight and token_weight cannot both be zero"})
	}

	if cfg.Defaults.Threshold < 0 || cfg.Defaults.Threshold > 100 {
		errs = append(errs, ValidationError{"defaults.threshold", "must be between 0 and 100"})
	}
	if cfg.Defaults.MaxResults < 1 {
		errs = append(errs, ValidationError{"defaults.max_results", "must be at least 1"})
	}
	switch cfg.Defaults.Strategy {
	case "lexical", "semantic", "auto":
	default:
		errs = append(errs, ValidationError{"defaults.strategy", "must be 'lexical', 'semantic', or 'auto'"})
	}

	if cfg.Cache.MaxEntries < 1 {
		errs = append(errs, ValidationError{"cache.max_entries", "must be at least 1"})
	}
	if cfg.Cache.MaxBytes < 0 {
		errs = append(errs, ValidationError{"cache.max_bytes", "must be non-negative"})
	}

	return errs
}

func validateProvider(prefix string, pc *ProviderConfig) []error {
	var errs []error
	if pc.Provider == "" {
		return nil
	}
	if pc.Provider != "gemini" && pc.Provider != "openai" {
		errs = append(errs, ValidationError{prefix + ".provider", "must be 'gemini' or 'openai'"})
	}
	if pc.APIKey == "" {
		errs = append(errs, ValidationError{prefix + ".api_key", "required when provider is set"})
	}
	return errs
}
