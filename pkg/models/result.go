package models

import (
	"fmt"
	"unicode/utf8"
)

// Strategy selects how similarity is computed.
type Strategy string

const (
	StrategyLexical  Strategy = "lexical"
	StrategySemantic Strategy = "semantic"
	StrategyAuto     Strategy = "auto" // prefer semantic, degrade to lexical
)

// ParseStrategy converts a string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyLexical, StrategySemantic, StrategyAuto:
		return Strategy(s), nil
	case "":
		return StrategyAuto, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (expected lexical, semantic, or auto)", s)
	}
}

// CacheStatus reports how the embedding cache participated in a detection.
type CacheStatus string

const (
	CacheHit  CacheStatus = "hit"
	CacheMiss CacheStatus = "miss"
	// CacheUnavailable means the cache was not in play: the lexical strategy
	// was used, or cache I/O failed and the request degraded.
	CacheUnavailable CacheStatus = "unavailable"
)

// MatchResult is a corpus entry that scored above the caller's threshold.
type MatchResult struct {
	Issue      *IssueRecord `json:"issue"`
	Similarity float64      `json:"similarity"` // 0-100
}

// DetectionOutcome is the result of one duplicate detection request.
type DetectionOutcome struct {
	Matches      []MatchResult `json:"matches"`
	StrategyUsed Strategy      `json:"strategy_used"`
	CacheStatus  CacheStatus   `json:"cache_status"`
}

// MatchSummary is the serializable per-match form returned to callers.
type MatchSummary struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	DescriptionExcerpt string  `json:"description_excerpt"`
	Similarity         float64 `json:"similarity"`
}

// Summaries renders matches in their serializable form, truncating
// descriptions to at most maxExcerpt bytes.
func (o *DetectionOutcome) Summaries(maxExcerpt int) []MatchSummary {
	out := make([]MatchSummary, len(o.Matches))
	for i, m := range o.Matches {
		out[i] = MatchSummary{
			ID:                 m.Issue.ID,
			Title:              m.Issue.Title,
			DescriptionExcerpt: truncate(m.Issue.Description, maxExcerpt),
			Similarity:         m.Similarity,
		}
	}
	return out
}

// truncate cuts s to at most max bytes plus an ellipsis, backing up so the
// cut never lands inside a multi-byte rune.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
