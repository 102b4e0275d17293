package cli

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/issuelab/dupscout/internal/cache"
	"github.com/issuelab/dupscout/internal/config"
	"github.com/issuelab/dupscout/internal/corpus"
	"github.com/issuelab/dupscout/internal/embedding"
	"github.com/issuelab/dupscout/internal/engine"
	"github.com/issuelab/dupscout/internal/lexical"
)

// loadConfig resolves and validates the configuration. A missing config
// file is not an error: defaults give a lexical-only engine.
func loadConfig() (*config.Config, error) {
	cfgPath := config.FindConfigPath(cfgFile)
	if cfgPath == "" {
		if cfgFile != "" {
			return nil, fmt.Errorf("config file not found: %s", cfgFile)
		}
		return config.Default(), nil
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Printf("config error: %v\n", e)
		}
		return nil, fmt.Errorf("invalid configuration")
	}

	return cfg, nil
}

// buildEngine wires loader, scorer, provider, and cache from config. The
// returned closer releases provider resources.
func buildEngine(cfg *config.Config) (*engine.Engine, func(), error) {
	loader := &corpus.FileLoader{
		Options: corpus.Options{StrictIDs: cfg.Defaults.StrictIDs},
	}

	scorer := lexical.NewScorer(cfg.Scorer.EditWeight, cfg.Scorer.TokenWeight, cfg.Scorer.ExtraStopwords)

	var provider embedding.Provider
	closer := func() {}
	fp, err := embedding.NewFallbackProvider(&cfg.Embedding, cfg.RateLimits.EmbeddingRPS)
	switch {
	case err == nil:
		provider = fp
		closer = func() { fp.Close() }
	case errors.Is(err, embedding.ErrUnavailable):
		// Lexical-only: semantic requests will degrade.
		log.Printf("embedding provider unavailable: %v", err)
	default:
		return nil, nil, err
	}

	store, err := cache.NewStore(cfg.Cache.Dir, cfg.Cache.MaxEntries, cfg.Cache.MaxBytes)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}

	eng := engine.New(loader, scorer, provider, store, engine.Options{
		EmbedTimeout:    time.Duration(cfg.Timeouts.EmbedSeconds) * time.Second,
		PersistRequired: cfg.Cache.PersistRequired,
	})
	return eng, closer, nil
}

func openStore(cfg *config.Config) (*cache.Store, error) {
	return cache.NewStore(cfg.Cache.Dir, cfg.Cache.MaxEntries, cfg.Cache.MaxBytes)
}
