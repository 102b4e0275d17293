package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the embedding cache",
	}

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry count, size estimate, and keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			stats, err := store.Stats()
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(stats)
			}

			fmt.Printf("Directory:  %s\n", store.Dir())
			fmt.Printf("Entries:    %d\n", stats.EntryCount)
			fmt.Printf("Total size: %d bytes\n", stats.TotalBytes)
			for _, k := range stats.Keys {
				fmt.Printf("  %s  model=%s\n", shorten(k.Signature), k.Model)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit JSON instead of a table")

	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached embedding entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("Cache cleared")
			return nil
		},
	}
}

func shorten(sig string) string {
	if len(sig) > 12 {
		return sig[:12] + "..."
	}
	return sig
}
