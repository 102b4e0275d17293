package embedding

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/time/rate"

	"github.com/issuelab/dupscout/internal/config"
)

// FallbackProvider wraps primary and fallback providers behind a shared
// request rate limit.
type FallbackProvider struct {
	primary  Provider
	fallback Provider
	limiter  *rate.Limiter
}

// NewFallbackProvider creates a provider with primary and optional fallback.
// Returns ErrUnavailable when no primary provider is configured, so callers
// can degrade to the lexical strategy up front.
func NewFallbackProvider(cfg *config.EmbeddingConfig, rps int) (*FallbackProvider, error) {
	if cfg.Primary.Provider == "" {
		return nil, fmt.Errorf("%w: no embedding provider configured", ErrUnavailable)
	}

	primary, err := createProvider(&cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("failed to create primary provider: %w", err)
	}

	var fallback Provider
	if cfg.Fallback.Provider != "" && cfg.Fallback.APIKey != "" {
		fallback, err = createProvider(&cfg.Fallback)
		if err != nil {
			log.Printf("Warning: failed to create fallback provider: %v", err)
		}
	}

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}

	return &FallbackProvider{
		primary:  primary,
		fallback: fallback,
		limiter:  limiter,
	}, nil
}

// createProvider creates a provider based on config
func createProvider(cfg *config.ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model, cfg.Dimensions)
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrUnavailable, cfg.Provider)
	}
}

// ModelID returns the primary model identifier. Cache entries are keyed to
// the primary: fallback vectors are only used within a single request and
// share the primary's key only if the fallback was configured with the
// same model.
func (p *FallbackProvider) ModelID() string {
	return p.primary.ModelID()
}

func (p *FallbackProvider) wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// Embed generates an embedding with fallback on failure
func (p *FallbackProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	embedding, err := p.primary.Embed(ctx, text)
	if err == nil {
		return embedding, nil
	}

	if p.fallback == nil {
		return nil, fmt.Errorf("%w: primary embedding failed (no fallback): %v", ErrUnavailable, err)
	}

	log.Printf("Primary embedding failed, trying fallback: %v", err)
	embedding, ferr := p.fallback.Embed(ctx, text)
	if ferr != nil {
		return nil, fmt.Errorf("%w: primary and fallback embedding failed: %v; %v", ErrUnavailable, err, ferr)
	}
	return embedding, nil
}

// EmbedBatch generates embeddings for multiple texts with fallback
func (p *FallbackProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	embeddings, err := p.primary.EmbedBatch(ctx, texts)
	if err == nil {
		return embeddings, nil
	}

	if p.fallback == nil {
		return nil, fmt.Errorf("%w: primary embedding failed (no fallback): %v", ErrUnavailable, err)
	}

	log.Printf("Primary batch embedding failed, trying fallback: %v", err)
	embeddings, ferr := p.fallback.EmbedBatch(ctx, texts)
	if ferr != nil {
		return nil, fmt.Errorf("%w: primary and fallback embedding failed: %v; %v", ErrUnavailable, err, ferr)
	}
	return embeddings, nil
}

// Close releases resources
func (p *FallbackProvider) Close() error {
	var errs []error
	if err := p.primary.Close(); err != nil {
		errs = append(errs, err)
	}
	if p.fallback != nil {
		if err := p.fallback.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
