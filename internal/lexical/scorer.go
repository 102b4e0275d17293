// Package lexical scores string similarity without any external model
// dependency. It combines a sequence-alignment edit ratio with a token
// overlap boost, on the 0-100 scale shared with the semantic strategy.
package lexical

import (
	"math"
	"strings"
	"unicode"

	"github.com/issuelab/dupscout/pkg/models"
)

// defaultStopwords are excluded from token overlap. Kept small on purpose:
// only words that carry no signal for issue reports.
var defaultStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "its": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "to": true, "was": true, "when": true, "with": true,
}

// Scorer computes lexical similarity between a query and a corpus record.
// Identical inputs always yield identical scores.
type Scorer struct {
	boost     float64
	stopwords map[string]bool
}

// NewScorer creates a scorer. The edit ratio carries the score; token
// overlap acts as a boost for paraphrased but lexically dissimilar text.
// Weights are normalized so only their ratio matters: the boost strength is
// tokenWeight / (editWeight + tokenWeight).
func NewScorer(editWeight, tokenWeight float64, extraStopwords []string) *Scorer {
	total := editWeight + tokenWeight
	if total <= 0 {
		editWeight, tokenWeight, total = 0.7, 0.3, 1.0
	}

	stopwords := make(map[string]bool, len(defaultStopwords)+len(extraStopwords))
	for w := range defaultStopwords {
		stopwords[w] = true
	}
	for _, w := range extraStopwords {
		stopwords[strings.ToLower(strings.TrimSpace(w))] = true
	}

	return &Scorer{
		boost:     tokenWeight / total,
		stopwords: stopwords,
	}
}

// Score returns a 0-100 similarity between the query text and the record's
// title plus description.
func (s *Scorer) Score(query models.Query, record *models.IssueRecord) float64 {
	return s.ScoreText(query.Text(), record.Text())
}

// ScoreText scores two raw strings. The edit ratio is the floor; token
// overlap closes part of the remaining gap to 100, so the result stays in
// [0,100] and equals 100 exactly for identical preprocessed inputs.
func (s *Scorer) ScoreText(a, b string) float64 {
	pa := Preprocess(a)
	pb := Preprocess(b)

	if pa == "" || pb == "" {
		return 0
	}
	if pa == pb {
		return 100
	}

	edit := matchRatio(pa, pb)
	overlap := s.tokenOverlap(pa, pb)

	score := (edit + (1-edit)*overlap*s.boost) * 100
	return math.Round(score*100) / 100
}

// Preprocess case-folds, strips non-alphanumeric runes to spaces, and
// collapses whitespace.
func Preprocess(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tokenOverlap is the Jaccard ratio of whitespace tokens, stopwords removed.
func (s *Scorer) tokenOverlap(a, b string) float64 {
	setA := s.tokenSet(a)
	setB := s.tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func (s *Scorer) tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(text) {
		if !s.stopwords[tok] {
			set[tok] = true
		}
	}
	return set
}

// matchRatio is the sequence-alignment similarity ratio 2*M/T, where M is
// the total size of matched blocks and T the combined length of both
// strings. Matched blocks are found by recursively taking the longest
// common substring, which keeps the measure order-sensitive.
func matchRatio(a, b string) float64 {
	if len(a)+len(b) == 0 {
		return 0
	}
	matched := matchedSize([]byte(a), []byte(b))
	return 2 * float64(matched) / float64(len(a)+len(b))
}

func matchedSize(a, b []byte) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchedSize(a[:ai], b[:bi])
	total += matchedSize(a[ai+size:], b[bi+size:])
	return total
}

// longestMatch finds the longest common substring of a and b, preferring
// the earliest occurrence in a, then in b.
func longestMatch(a, b []byte) (bestA, bestB, bestSize int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// Positions of each byte value in b.
	b2j := make(map[byte][]int)
	for j, c := range b {
		b2j[c] = append(b2j[c], j)
	}

	// lengths[j] is the length of the match ending at a[i], b[j].
	lengths := make(map[int]int)
	for i, c := range a {
		next := make(map[int]int, len(lengths))
		for _, j := range b2j[c] {
			k := lengths[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestA = i - k + 1
				bestB = j - k + 1
				bestSize = k
			}
		}
		lengths = next
	}
	return bestA, bestB, bestSize
}
