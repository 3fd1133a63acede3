package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/plotsearch/internal/config"
	logpkg "github.com/kailas-cloud/plotsearch/internal/logger"
)

// NewRootCmd builds the plotsearch command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "plotsearch",
		Short:         "Semantic search over movie plots",
		Long:          `Rank a corpus of movie plots against a free-text description by embedding similarity.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	rootCmd.AddCommand(
		NewSearchCmd(),
		NewServeCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)
	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "", "Config file (default: config/$ENV.yaml, built-in defaults if absent)")
	cmd.PersistentFlags().String("corpus", "", "Corpus file or DSN, overrides corpus.path / corpus.dsn")
	cmd.PersistentFlags().String("source", "", "Corpus source: csv, parquet, sql, redis")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig resolves the configuration for a command and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.LoadOrDefault(config.GetEnv())
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	if src, _ := cmd.Flags().GetString("source"); src != "" {
		cfg.Corpus.Source = src
	}
	if corpus, _ := cmd.Flags().GetString("corpus"); corpus != "" {
		if cfg.Corpus.Source == config.SourceSQL {
			cfg.Corpus.DSN = corpus
		} else {
			cfg.Corpus.Path = corpus
		}
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger for env. Logs always go to stderr so stdout
// carries only command output.
func newLogger(env string, cfg config.Config) (*zap.Logger, error) {
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
