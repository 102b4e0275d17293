package models

import (
	"testing"
	"unicode/utf8"
)

func TestContentHash(t *testing.T) {
	rec := &IssueRecord{ID: "A1", Title: "Camera crash", Description: "Crashes on launch"}

	hash1 := rec.ContentHash()
	hash2 := rec.ContentHash()

	if hash1 != hash2 {
		t.Error("ContentHash not deterministic")
	}
	if len(hash1) != 64 {
		t.Errorf("ContentHash length = %d, want 64", len(hash1))
	}

	other := &IssueRecord{ID: "A1", Title: "Camera crash", Description: "Crashes on launcH"}
	if hash1 == other.ContentHash() {
		t.Error("different content produced same hash")
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"lexical", StrategyLexical, false},
		{"semantic", StrategySemantic, false},
		{"auto", StrategyAuto, false},
		{"", StrategyAuto, false},
		{"hybrid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStrategy(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueryText(t *testing.T) {
	q := Query{Title: "Camera crash", Description: "on launch"}
	if q.Text() != "Camera crash on launch" {
		t.Errorf("Text() = %q", q.Text())
	}

	q = Query{Title: "Camera crash"}
	if q.Text() != "Camera crash" {
		t.Errorf("Text() with empty description = %q", q.Text())
	}
}

func TestSummaries(t *testing.T) {
	outcome := &DetectionOutcome{
		Matches: []MatchResult{
			{
				Issue:      &IssueRecord{ID: "A1", Title: "Camera crash", Description: "A very long description that keeps going well past the cut"},
				Similarity: 87.5,
			},
		},
		StrategyUsed: StrategySemantic,
		CacheStatus:  CacheHit,
	}

	summaries := outcome.Summaries(20)
	if len(summaries) != 1 {
		t.Fatalf("len = %d, want 1", len(summaries))
	}
	s := summaries[0]
	if s.ID != "A1" || s.Similarity != 87.5 {
		t.Errorf("summary = %+v", s)
	}
	if len(s.DescriptionExcerpt) != 23 { // 20 bytes + "..."
		t.Errorf("excerpt length = %d, want 23", len(s.DescriptionExcerpt))
	}
}

func TestSummariesTruncatesOnRuneBoundary(t *testing.T) {
	// Four 3-byte runes; a cut at 10 bytes lands mid-rune and must back up.
	outcome := &DetectionOutcome{
		Matches: []MatchResult{
			{
				Issue:      &IssueRecord{ID: "A1", Title: "t", Description: "カメラカメラ"},
				Similarity: 90,
			},
		},
	}

	excerpt := outcome.Summaries(10)[0].DescriptionExcerpt
	if !utf8.ValidString(excerpt) {
		t.Errorf("excerpt %q is not valid UTF-8", excerpt)
	}
	if excerpt != "カメラ..." {
		t.Errorf("excerpt = %q, want cut backed up to the rune boundary", excerpt)
	}
}
