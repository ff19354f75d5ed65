package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"progress-sync/internal/bootstrap"
	"progress-sync/internal/config"
	"progress-sync/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configDir)
		if err != nil {
			return err
		}

		logg, err := logger.New(cfg.Log)
		if err != nil {
			return err
		}
		defer func() { _ = logg.Sync() }()

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		app, err := bootstrap.New(ctx, cfg, logg)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           app.Handler,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			logg.Info("shutting down server")
			_ = srv.Shutdown(shutdownCtx)
		}()

		logg.Info("progressd listening", zap.String("addr", cfg.Server.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
