package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "dupscout",
	Short: "Duplicate issue detection",
	Long: `dupscout ranks previously recorded issues by similarity to a newly
described one, using lexical similarity (always available) or embedding-based
semantic similarity with a durable, signature-keyed vector cache.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	rootCmd.AddCommand(newDetectCmd())
	rootCmd.AddCommand(newCorpusCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dupscout version %s\n", version)
		},
	}
}
