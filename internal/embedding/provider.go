package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable marks embedding failures the engine recovers from by
// degrading to the lexical strategy. It wraps missing configuration,
// provider construction failures, and total request failures.
var ErrUnavailable = errors.New("embedding unavailable")

// Provider defines the interface for embedding generation
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// ModelID identifies the model for cache keying. Deterministic for a
	// given configuration; two providers with equal ModelID produce
	// interchangeable vectors.
	ModelID() string
	Close() error
}

// PrepareRecordText combines an issue's fields for embedding. The log
// excerpt participates: crash signatures in logs are often the strongest
// duplicate signal.
func PrepareRecordText(title, description, logExcerpt string) string {
	text := strings.TrimSpace(fmt.Sprintf("%s %s %s", title, description, logExcerpt))

	// Truncate to ~6000 chars (~1500 tokens) to stay within limits
	if len(text) > 6000 {
		text = text[:6000] + "..."
	}

	return text
}

// PrepareQueryText combines a query's title and description for embedding.
func PrepareQueryText(title, description string) string {
	return PrepareRecordText(title, description, "")
}
