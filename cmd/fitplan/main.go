// Package main is the fitplan binary: the HTTP service and one-shot CLI
// commands for generating workout plans.
package main

import (
	"alcyxob/fitplan/internal/config"
	"alcyxob/fitplan/internal/llm"
	"alcyxob/fitplan/internal/metrics"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const appName = "fitplan"

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Personalized weekly workout plans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", ".", "Directory containing config.yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides log.level")

	cmd.AddCommand(serveCmd(opts), generateCmd(opts), promptCmd())
	return cmd
}

// load reads configuration and builds the process logger.
func (o *rootOptions) load() (config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger := newLogger(level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(level string) *slog.Logger {
	l := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func newModelClient(cfg config.GeminiConfig, logger *slog.Logger, m *metrics.Metrics) *llm.Client {
	return llm.NewClient(cfg.APIKey,
		llm.WithBaseURL(cfg.BaseURL),
		llm.WithModel(cfg.Model),
		llm.WithTimeout(cfg.Timeout),
		llm.WithRetryConfig(llm.RetryConfig{MaxAttempts: cfg.MaxAttempts, Delay: cfg.RetryDelay}),
		llm.WithLogger(logger),
		llm.WithMetrics(m),
	)
}
