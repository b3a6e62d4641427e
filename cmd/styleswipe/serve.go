package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tair/styleswipe/db/migrations"
	"github.com/tair/styleswipe/pkg/database"
	"github.com/tair/styleswipe/pkg/logger"
	"github.com/tair/styleswipe/pkg/tracing"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	cfg := c.cfg
	logger.Logger.Info().
		Str("service", cfg.App.Name).
		Str("environment", cfg.App.Environment).
		Str("log_level", cfg.App.LogLevel).
		Msg("Starting StyleSwipe service")

	tp, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
	})
	if err != nil {
		return err
	}

	if cfg.DB.MigrateOnStart {
		if err := database.Migrate(c.databaseConfig(), migrations.FS, database.Up); err != nil {
			return err
		}
	}

	a, cleanup, err := c.openApp(ctx)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Logger.Info().
			Str("addr", server.Addr).
			Str("images_dir", cfg.Storage.ImagesDir).
			Bool("search_enabled", cfg.Search.APIKey != "").
			Bool("tryon_enabled", a.Generator.Enabled()).
			Bool("kafka_enabled", cfg.Kafka.Enabled).
			Msg("HTTP server started")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		logger.Logger.Info().Msg("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout())
	defer cancel()
	if serr := server.Shutdown(shutdownCtx); serr != nil {
		logger.Logger.Error().Err(serr).Msg("HTTP server shutdown failed")
	}

	cleanup()
	if terr := tracing.Shutdown(shutdownCtx, tp); terr != nil {
		logger.Logger.Error().Err(terr).Msg("Tracer shutdown failed")
	}
	logger.Logger.Info().Msg("Server stopped")

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
