package engine

import (
	"math"
	"sort"

	"github.com/issuelab/dupscout/pkg/models"
)

// CosineScore rescales cosine similarity to the shared 0-100 scale so
// thresholds are comparable across strategies. Negative cosine clamps to 0.
func CosineScore(a, b []float32) float64 {
	cos := cosine(a, b)
	if cos <= 0 {
		return 0
	}
	if cos > 1 {
		cos = 1
	}
	return math.Round(cos*100*100) / 100
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rank filters scored candidates by threshold, orders them descending by
// similarity with ties kept in corpus order, and truncates to maxResults.
// Candidates must arrive in corpus order for the tie-break to hold.
func rank(candidates []models.MatchResult, threshold float64, maxResults int) []models.MatchResult {
	matches := make([]models.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		if c.Similarity >= threshold {
			matches = append(matches, c)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}
