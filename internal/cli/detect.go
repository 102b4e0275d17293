package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/issuelab/dupscout/internal/engine"
	"github.com/issuelab/dupscout/pkg/models"
	"github.com/spf13/cobra"
)

func newDetectCmd() *cobra.Command {
	var (
		description string
		corpusRef   string
		threshold   float64
		maxResults  int
		strategy    string
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "detect [title]",
		Short: "Find likely duplicates of a newly described issue",
		Long: `Rank corpus entries by similarity to the given issue title and
description, returning those at or above the threshold.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if threshold < 0 {
				threshold = cfg.Defaults.Threshold
			}
			if maxResults <= 0 {
				maxResults = cfg.Defaults.MaxResults
			}
			if strategy == "" {
				strategy = cfg.Defaults.Strategy
			}
			parsed, err := models.ParseStrategy(strategy)
			if err != nil {
				return err
			}

			eng, closer, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			defer closer()

			outcome, err := eng.Detect(ctx, engine.Request{
				Query:      models.Query{Title: args[0], Description: description},
				CorpusRef:  corpusRef,
				Threshold:  threshold,
				MaxResults: maxResults,
				Strategy:   parsed,
			})
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}

			if jsonOut {
				return printJSON(outcome)
			}
			printOutcome(outcome)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "issue description text")
	cmd.Flags().StringVar(&corpusRef, "corpus", "", "corpus reference (.csv path or owner/repo)")
	cmd.Flags().Float64Var(&threshold, "threshold", -1, "minimum similarity (0-100)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "maximum matches to return")
	cmd.Flags().StringVar(&strategy, "strategy", "", "similarity strategy: lexical, semantic, or auto")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit JSON instead of a table")
	cmd.MarkFlagRequired("corpus")

	return cmd
}

func printOutcome(outcome *models.DetectionOutcome) {
	if len(outcome.Matches) == 0 {
		fmt.Println("No duplicates found")
	} else {
		fmt.Printf("Found %d likely duplicates:\n\n", len(outcome.Matches))
		for i, s := range outcome.Summaries(120) {
			fmt.Printf("%d. %s - %s\n", i+1, s.ID, s.Title)
			fmt.Printf("   Similarity: %.1f%%\n", s.Similarity)
			if s.DescriptionExcerpt != "" {
				fmt.Printf("   %s\n", s.DescriptionExcerpt)
			}
			fmt.Println()
		}
	}
	fmt.Printf("Strategy: %s | Cache: %s\n", outcome.StrategyUsed, outcome.CacheStatus)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
