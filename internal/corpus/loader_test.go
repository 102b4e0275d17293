package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "issues.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, `PLM_ID,Problem Title,Problem Description,Logs Analysis
A1,Camera crash,App crashes switching to front camera,FATAL EXCEPTION
B2,Battery drain,High battery usage overnight,
`)

	loader := &FileLoader{}
	c, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(c.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(c.Records))
	}

	if c.Records[0].ID != "A1" {
		t.Errorf("Records[0].ID = %q, want A1", c.Records[0].ID)
	}
	if c.Records[0].Title != "Camera crash" {
		t.Errorf("Records[0].Title = %q", c.Records[0].Title)
	}
	if c.Records[0].LogExcerpt != "FATAL EXCEPTION" {
		t.Errorf("Records[0].LogExcerpt = %q", c.Records[0].LogExcerpt)
	}
	if c.Signature == "" {
		t.Error("Signature is empty")
	}
	if len(c.Duplicates) != 0 {
		t.Errorf("Duplicates = %v, want none", c.Duplicates)
	}
}

func TestLoadCSVColumnAliases(t *testing.T) {
	path := writeCSV(t, `id,title,description
X1,Audio noise,Static noise during playback
`)

	loader := &FileLoader{}
	c, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Records[0].ID != "X1" || c.Records[0].Title != "Audio noise" {
		t.Errorf("aliased columns not mapped: %+v", c.Records[0])
	}
}

func TestLoadCSVMissingIDColumn(t *testing.T) {
	path := writeCSV(t, `title,description
Camera crash,App crashes
`)

	loader := &FileLoader{}
	_, err := loader.Load(context.Background(), path)

	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("Load() error = %v, want FormatError", err)
	}
	if !strings.Contains(ferr.Reason, "unique-id") {
		t.Errorf("Reason = %q, want mention of unique-id column", ferr.Reason)
	}
}

func TestLoadCSVDuplicateIDs(t *testing.T) {
	content := `plm_id,title,description
A1,First report,original row
A1,Second report,colliding row
B2,Other issue,independent row
`

	t.Run("first occurrence wins", func(t *testing.T) {
		path := writeCSV(t, content)
		loader := &FileLoader{}
		c, err := loader.Load(context.Background(), path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(c.Records) != 2 {
			t.Fatalf("len(Records) = %d, want 2", len(c.Records))
		}
		if c.Records[0].Title != "First report" {
			t.Errorf("kept row = %q, want first occurrence", c.Records[0].Title)
		}
		if len(c.Duplicates) != 1 || c.Duplicates[0] != "A1" {
			t.Errorf("Duplicates = %v, want [A1]", c.Duplicates)
		}
	})

	t.Run("strict mode rejects", func(t *testing.T) {
		path := writeCSV(t, content)
		loader := &FileLoader{Options: Options{StrictIDs: true}}
		_, err := loader.Load(context.Background(), path)
		var ferr *FormatError
		if !errors.As(err, &ferr) {
			t.Fatalf("Load() error = %v, want FormatError", err)
		}
	})
}

func TestLoadCSVSkipsEmptyIDs(t *testing.T) {
	path := writeCSV(t, `plm_id,title,description
A1,Kept,row with id
,Dropped,row without id
`)

	loader := &FileLoader{}
	c, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.Records) != 1 {
		t.Errorf("len(Records) = %d, want 1", len(c.Records))
	}
}

func TestLoadCSVEmpty(t *testing.T) {
	path := writeCSV(t, "")
	loader := &FileLoader{}
	_, err := loader.Load(context.Background(), path)
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("Load() error = %v, want FormatError", err)
	}
}

func TestLoadUnrecognizedRef(t *testing.T) {
	loader := &FileLoader{}
	_, err := loader.Load(context.Background(), "not-a-corpus.txt")
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("Load() error = %v, want FormatError", err)
	}
}

func TestLoadDottedRepoRefIsGitHub(t *testing.T) {
	// Repo names may contain dots; only the .csv suffix selects the file
	// path. The lookup itself fails here, but never as an unrecognized ref.
	loader := &FileLoader{}
	_, err := loader.Load(context.Background(), "owner/repo.js")
	var ferr *FormatError
	if errors.As(err, &ferr) {
		t.Errorf("owner/repo.js treated as unrecognized ref: %v", err)
	}
}
