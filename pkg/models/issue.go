package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// IssueRecord is a single previously recorded issue in a corpus.
// Records are immutable once loaded; the loader owns the backing slice.
type IssueRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	LogExcerpt  string `json:"log_excerpt,omitempty"`
}

// Text returns the title and description joined for lexical comparison.
func (r *IssueRecord) Text() string {
	return strings.TrimSpace(r.Title + " " + r.Description)
}

// ContentHash returns a SHA256 hash of the record content for change detection.
func (r *IssueRecord) ContentHash() string {
	h := sha256.Sum256([]byte(r.ID + "\x1f" + r.Title + "\x1f" + r.Description + "\x1f" + r.LogExcerpt))
	return hex.EncodeToString(h[:])
}

// Query is a newly described issue to match against a corpus.
type Query struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Text returns the title and description joined for scoring.
func (q Query) Text() string {
	return strings.TrimSpace(q.Title + " " + q.Description)
}
