package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const starterConfig = `# dupscout configuration
embedding:
  primary:
    provider: "gemini"            # gemini or openai
    model: "gemini-embedding-001"
    api_key: "${GEMINI_API_KEY}"
    dimensions: 768
  fallback:
    provider: "openai"
    model: "text-embedding-3-small"
    api_key: "${OPENAI_API_KEY}"
    dimensions: 768

cache:
  # dir: "~/.cache/dupscout" by default
  max_entries: 16
  persist_required: false

scorer:
  edit_weight: 0.7
  token_weight: 0.3

defaults:
  threshold: 60
  max_results: 5
  strategy: "auto"                # lexical, semantic, or auto

rate_limits:
  embedding_requests_per_second: 5

timeouts:
  embed_seconds: 60
`

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter config to dupscout.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "dupscout.yaml"
			if cfgFile != "" {
				path = cfgFile
			}

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}

			if err := os.WriteFile(path, []byte(starterConfig), 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// API keys stay out of the output.
			cfg.Embedding.Primary.APIKey = redact(cfg.Embedding.Primary.APIKey)
			cfg.Embedding.Fallback.APIKey = redact(cfg.Embedding.Fallback.APIKey)

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func redact(key string) string {
	if key == "" {
		return ""
	}
	return "********"
}
