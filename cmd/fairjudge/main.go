// Package main is the entry point for the fairjudge CLI.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ekisa-team/fairjudge/internal/config"
	"github.com/ekisa-team/fairjudge/internal/env"
	"github.com/ekisa-team/fairjudge/internal/envvar"
	"github.com/ekisa-team/fairjudge/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	flagConfigPath string
	flagVerbose    bool
)

// rootCmd is the base command for the fairjudge CLI.
var rootCmd = &cobra.Command{
	Use:   "fairjudge",
	Short: "Judge the political bias of news articles with local models",
	Long: `fairjudge runs a news article past three commentators (liberal,
conservative and neutral) backed by a local model, and reports a summary and
a 0-100 bias score from each of them.

Models are served either by a local model server such as Ollama or by a
llama.cpp server that fairjudge starts and owns.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		environment := env.FromEnv()

		slog.SetDefault(logger.New(environment, loggerOptions(cmd, "")...))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", defaultConfigFile(), "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// loggerOptions builds logger options from flags. A non-empty logFile, or
// FAIRJUDGE_LOG_FILE, enables file output.
func loggerOptions(cmd *cobra.Command, logFile string) []logger.Option {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}

	opts := []logger.Option{logger.WithWriter(cmd.ErrOrStderr()), logger.WithLevel(level)}
	if path := os.Getenv(envvar.FairjudgeLogFile); path != "" {
		logFile = path
	}
	if logFile != "" {
		opts = append(opts, logger.WithLogToFile(true), logger.WithLogFile(logFile))
	}

	return opts
}

// defaultConfigFile returns FAIRJUDGE_CONFIG or the platform config file.
func defaultConfigFile() string {
	if path := os.Getenv(envvar.FairjudgeConfig); path != "" {
		return path
	}
	return filepath.Join(config.DefaultConfigPath(), "config.yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
