package main

import (
	"fmt"
	"os"

	"progress-sync/internal/config"
	"progress-sync/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version é sobrescrito no build: -ldflags "-X main.version=..."
var version = "dev"

var configDir string

var rootCmd = &cobra.Command{
	Use:   "progressd",
	Short: "Progress synchronization service",
	Long: `progressd serves the shared travel progress record over HTTP.
Concurrent instances read and partially update one JSON record, with a
per-origin fixed-window rate limit and ETag conditional GETs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// erro de CLI vai pelo logger em formato console
		l, logErr := logger.New(config.LogConfig{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing an optional .env file")
}
