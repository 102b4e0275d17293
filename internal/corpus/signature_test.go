package corpus

import (
	"io"
	"strings"
	"testing"

	"github.com/issuelab/dupscout/pkg/models"
)

func csvReader(content string) io.Reader {
	return strings.NewReader(content)
}

func testRecords() []models.IssueRecord {
	return []models.IssueRecord{
		{ID: "A1", Title: "App crashes on launch", Description: "Crashes immediately after splash"},
		{ID: "B2", Title: "Battery drain", Description: "High battery usage overnight"},
	}
}

func TestComputeSignatureDeterministic(t *testing.T) {
	sig1 := ComputeSignature(testRecords())
	sig2 := ComputeSignature(testRecords())

	if sig1 != sig2 {
		t.Errorf("signatures differ for identical content: %s != %s", sig1, sig2)
	}
	if len(sig1) != 64 {
		t.Errorf("signature length = %d, want 64 hex chars", len(sig1))
	}
}

func TestComputeSignatureSensitivity(t *testing.T) {
	base := ComputeSignature(testRecords())

	tests := []struct {
		name   string
		mutate func([]models.IssueRecord)
	}{
		{
			name: "single character change",
			mutate: func(rs []models.IssueRecord) {
				rs[0].Description = "Crashes immediately after splasH"
			},
		},
		{
			name: "id change",
			mutate: func(rs []models.IssueRecord) {
				rs[1].ID = "B3"
			},
		},
		{
			name: "content shifted between fields",
			mutate: func(rs []models.IssueRecord) {
				rs[0].Title = "App crashes on launchC"
				rs[0].Description = "rashes immediately after splash"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := testRecords()
			tt.mutate(rs)
			if got := ComputeSignature(rs); got == base {
				t.Error("signature unchanged after content change")
			}
		})
	}
}

func TestComputeSignatureOrderSensitive(t *testing.T) {
	rs := testRecords()
	swapped := []models.IssueRecord{rs[1], rs[0]}

	if ComputeSignature(rs) == ComputeSignature(swapped) {
		t.Error("signature should depend on record order")
	}
}

func TestSignatureIndependentOfSource(t *testing.T) {
	// The same logical content loaded from differently formatted CSV bytes
	// must produce the same signature.
	c1, err := ParseCSV(csvReader("plm_id,title,description\nA1,Camera crash,Crashes on launch\n"), "a.csv", Options{})
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	c2, err := ParseCSV(csvReader("ID,Title,Description,Extra\nA1,Camera crash,Crashes on launch,ignored-not-mapped\n"), "b.csv", Options{})
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}

	if c1.Signature != c2.Signature {
		t.Errorf("signatures differ for equivalent content: %s != %s", c1.Signature, c2.Signature)
	}
}
