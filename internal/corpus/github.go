package corpus

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/issuelab/dupscout/pkg/models"
)

// apiIssue is the subset of the GitHub issue payload the loader cares about.
type apiIssue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state"`
}

// LoadGitHub builds a corpus from the issues of a GitHub repository. The
// /issues endpoint includes pull requests; they are kept, matching what a
// title/body similarity search wants to compare against.
func LoadGitHub(ctx context.Context, fullRepo string, opts Options) (*Corpus, error) {
	org, repo, err := parseRepo(fullRepo)
	if err != nil {
		return nil, err
	}

	client, err := api.DefaultRESTClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	var records []models.IssueRecord
	seen := make(map[string]bool)
	page := 1
	const perPage = 100

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		params := url.Values{}
		params.Set("state", "all")
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))
		params.Set("sort", "created")
		params.Set("direction", "asc")

		endpoint := fmt.Sprintf("repos/%s/%s/issues?%s", org, repo, params.Encode())

		var issues []apiIssue
		if err := client.Get(endpoint, &issues); err != nil {
			return nil, fmt.Errorf("failed to list issues: %w", err)
		}
		if len(issues) == 0 {
			break
		}

		for _, issue := range issues {
			id := fmt.Sprintf("#%d", issue.Number)
			if seen[id] {
				continue
			}
			seen[id] = true
			records = append(records, models.IssueRecord{
				ID:          id,
				Title:       issue.Title,
				Description: issue.Body,
			})
		}

		if len(issues) < perPage {
			break
		}
		page++
	}

	if len(records) == 0 {
		return nil, &FormatError{Source: fullRepo, Reason: "repository has no issues"}
	}

	return &Corpus{
		Records:   records,
		Signature: ComputeSignature(records),
	}, nil
}

// parseRepo splits "owner/repo" into owner and repo
func parseRepo(fullRepo string) (string, string, error) {
	parts := strings.Split(fullRepo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format: %s (expected owner/repo)", fullRepo)
	}
	return parts[0], parts[1], nil
}
