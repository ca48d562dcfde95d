// Package cmd implements the salesbot CLI using cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cicidi/product-sales-prediction/internal/config"
	"github.com/cicidi/product-sales-prediction/internal/dependency"
	"github.com/cicidi/product-sales-prediction/internal/shared/cmdutils"
)

const version = "0.1.0"

var (
	cfgFile  string
	showLogs bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "salesbot",
	Short: cmdutils.Logo + " salesbot: conversational product sales assistant",
	Long: cmdutils.Logo + " salesbot answers product and sales questions by calling the tools\n" +
		"published by a remote tool registry, asking for missing context when needed.",
	SilenceUsage: true,
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default ~/.salesbot/config.json)")
	rootCmd.PersistentFlags().BoolVar(&showLogs, "logs", false, "Show runtime logs")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(thoughtsCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.ConfigPath()
}

// newLogger writes text logs to stderr. Without --logs only warnings surface
// so they do not interleave with REPL output.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if showLogs {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (*config.Config, error) {
	config.LoadEnv()
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// newContainer loads configuration and wires the services. Callers own Close.
func newContainer() (*dependency.ServiceContainer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger()
	slog.SetDefault(logger)
	return dependency.New(cfg, logger)
}
