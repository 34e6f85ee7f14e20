package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
)

func serveCmd(cfg *config.Config) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := cli.SetupLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	collector, metricsHandler, err := cli.SetupMetrics(cfg, metricsNamespace)
	if err != nil {
		return err
	}

	rt, err := openRuntime(ctx, cfg, logger, collector, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Seed eagerly so the first request does not pay for it.
	if err := rt.services.Categories.EnsureDefaultsSeeded(ctx); err != nil {
		return err
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		UserHeader:         cfg.UserHeader,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Metrics:            metricsHandler,
		Logger:             logger,
	}, rt.services, rt.backend.Store)
	if err != nil {
		return err
	}

	caches := cache.NewManager()
	caches.Register(rt.services.Categories.DefaultsCache())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return caches.Run(gctx, cfg.CacheCleanupInterval)
	})
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", cfg.EventsEnabled(),
			"version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
