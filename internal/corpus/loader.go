package corpus

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/issuelab/dupscout/pkg/models"
)

// FormatError reports a malformed corpus. It is fatal to the request.
type FormatError struct {
	Source string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("corpus %s: %s", e.Source, e.Reason)
}

// Corpus is an ordered, immutable set of issue records plus its content
// signature. Duplicates lists ids that collided with an earlier row (the
// first occurrence won).
type Corpus struct {
	Records    []models.IssueRecord
	Signature  string
	Duplicates []string
}

// Options configures corpus loading.
type Options struct {
	// StrictIDs rejects a corpus containing duplicate ids instead of
	// keeping the first occurrence.
	StrictIDs bool
}

// Loader resolves a corpus reference into records and a signature.
type Loader interface {
	Load(ctx context.Context, ref string) (*Corpus, error)
}

// Column aliases accepted for each record field, in priority order.
var (
	idColumns          = []string{"plm_id", "id", "issue_id"}
	titleColumns       = []string{"problem_title", "title", "issue_title"}
	descriptionColumns = []string{"problem_description", "description", "issue_description"}
	logColumns         = []string{"logs_analysis", "logs", "analysis", "log_excerpt"}
)

// FileLoader loads corpora from CSV files or GitHub repositories. A ref
// ending in .csv is read from disk; a ref of the form "owner/repo" is
// fetched from the GitHub issues API.
type FileLoader struct {
	Options Options
}

// Load resolves ref and builds the corpus.
func (l *FileLoader) Load(ctx context.Context, ref string) (*Corpus, error) {
	if strings.HasSuffix(strings.ToLower(ref), ".csv") {
		return l.loadCSV(ref)
	}
	if strings.Count(ref, "/") == 1 {
		return LoadGitHub(ctx, ref, l.Options)
	}
	return nil, &FormatError{Source: ref, Reason: "unrecognized corpus reference (expected a .csv path or owner/repo)"}
}

func (l *FileLoader) loadCSV(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	return ParseCSV(f, path, l.Options)
}

// ParseCSV reads CSV rows into a corpus. Header names are normalized
// (trimmed, lowercased, spaces to underscores) before column matching.
func ParseCSV(r io.Reader, source string, opts Options) (*Corpus, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &FormatError{Source: source, Reason: "empty corpus"}
	}
	if err != nil {
		return nil, &FormatError{Source: source, Reason: fmt.Sprintf("failed to read header: %v", err)}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[normalizeColumn(name)] = i
	}

	idCol, ok := findColumn(columns, idColumns)
	if !ok {
		return nil, &FormatError{Source: source, Reason: "missing unique-id column (expected one of plm_id, id, issue_id)"}
	}
	titleCol, _ := findColumn(columns, titleColumns)
	descCol, _ := findColumn(columns, descriptionColumns)
	logCol, _ := findColumn(columns, logColumns)

	var (
		records    []models.IssueRecord
		duplicates []string
		seen       = make(map[string]bool)
		line       = 1
	)

	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &FormatError{Source: source, Reason: fmt.Sprintf("line %d: %v", line, err)}
		}

		id := strings.TrimSpace(field(row, idCol))
		if id == "" {
			// Rows without a usable id are not corpus members.
			continue
		}

		if seen[id] {
			if opts.StrictIDs {
				return nil, &FormatError{Source: source, Reason: fmt.Sprintf("line %d: duplicate id %q", line, id)}
			}
			duplicates = append(duplicates, id)
			continue
		}
		seen[id] = true

		records = append(records, models.IssueRecord{
			ID:          id,
			Title:       strings.TrimSpace(field(row, titleCol)),
			Description: strings.TrimSpace(field(row, descCol)),
			LogExcerpt:  strings.TrimSpace(field(row, logCol)),
		})
	}

	if len(records) == 0 {
		return nil, &FormatError{Source: source, Reason: "no usable rows"}
	}

	return &Corpus{
		Records:    records,
		Signature:  ComputeSignature(records),
		Duplicates: duplicates,
	}, nil
}

func normalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func findColumn(columns map[string]int, aliases []string) (int, bool) {
	for _, alias := range aliases {
		if idx, ok := columns[alias]; ok {
			return idx, true
		}
	}
	return -1, false
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
