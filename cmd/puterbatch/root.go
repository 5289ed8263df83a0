package main

import (
	"fmt"
	"time"

	"github.com/phrazzld/puterbatch/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "puterbatch",
		Short: "Run a batch of questions through the Puter completion API",
		Long: "puterbatch reads one JSON question per line, builds a few-shot prompt for each, " +
			"asks the configured model through the Puter driver API and writes <result-dir>/<line>.json. " +
			"Lines that already have a result are skipped, so an interrupted batch can simply be re-run.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(
				config.WithConfigFile(configFile),
				config.WithFlags(cmd.Flags()),
			)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return runBatch(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	rootCmd.Flags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	addConfigFlags(rootCmd.Flags())

	return rootCmd
}

// addConfigFlags registers one flag per entry of config.FlagKeys.
func addConfigFlags(fs *pflag.FlagSet) {
	fs.String("model", "", "model name passed as the driver (required)")
	fs.String("base-url", "https://api.puter.com", "Puter API base URL")
	fs.String("interface", "puter-chat-completion", "Puter driver interface")
	fs.Float64("temperature", 0.2, "sampling temperature")
	fs.Float64("top-p", 0.9, "nucleus sampling top_p")
	fs.Int("max-retries", 5, "retries per completion request after the first attempt")
	fs.Duration("retry-base-delay", 10*time.Second, "minimum wait between attempts")
	fs.Duration("retry-jitter", 10*time.Second, "random extra wait added to the base delay")
	fs.Duration("request-timeout", 0, "timeout of a single request attempt (0 disables)")
	fs.String("username", "", "Puter username (or PUTER_USERNAME)")
	fs.String("password", "", "Puter password (or PUTER_PASSWORD)")
	fs.String("question", "./dataset/question.jsonl", "JSONL question file")
	fs.String("result-dir", "", "directory receiving <id>.json artifacts (required)")
	fs.Int("workers", 5, "number of concurrent workers")
	fs.Int("generations", 1, "completions requested per question")
	fs.String("progress", "bar", "progress display: bar, log or none")
	fs.String("metrics-file", "", "write Prometheus metrics to this file when the run ends")
	fs.String("shots", "./dataset/shots.yaml", "YAML few-shot catalog")
	fs.Int("shot-number", 0, "few-shot examples per prompt")
	fs.String("shot-type", "example", "shot type selecting examples and template")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
}
