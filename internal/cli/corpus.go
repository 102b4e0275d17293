package cli

import (
	"context"
	"fmt"

	"github.com/issuelab/dupscout/internal/corpus"
	"github.com/spf13/cobra"
)

func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect issue corpora",
	}

	cmd.AddCommand(newCorpusValidateCmd())

	return cmd
}

func newCorpusValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [ref]",
		Short: "Load a corpus and report records, duplicate ids, and signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := &corpus.FileLoader{Options: corpus.Options{StrictIDs: strict}}

			c, err := loader.Load(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Records:   %d\n", len(c.Records))
			fmt.Printf("Signature: %s\n", c.Signature)
			if len(c.Duplicates) > 0 {
				fmt.Printf("Duplicate ids (first occurrence kept): %v\n", c.Duplicates)
			} else {
				fmt.Println("Duplicate ids: none")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "reject the corpus on duplicate ids")

	return cmd
}
