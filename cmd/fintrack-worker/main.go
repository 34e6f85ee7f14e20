package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	logger, err := cli.SetupLogger(cfg, os.Stdout)
	if err != nil {
		log.New(log.DefaultConfig()).Error("Invalid logging configuration", log.FieldError, err)
		os.Exit(1)
	}
	logger = logger.WithComponent(log.ComponentWorker)

	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	collector, metricsHandler, err := cli.SetupMetrics(cfg, "fintrack_worker")
	if err != nil {
		return err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	factory := backend.NewFactory(logger, collector)
	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to release backend", log.FieldError, err)
		}
	}()

	exporter, err := factory.CreateExporter(ctx, cfg)
	if err != nil {
		return err
	}

	exportCfg := worker.DefaultExportConfig()
	exportCfg.FullExportInterval = cfg.ExportInterval
	w := worker.NewExportWorker(res.Store.Transactions(), exporter, exportCfg, logger, collector)

	g, gctx := errgroup.WithContext(ctx)

	// Periodic full export catches anything a lost event missed.
	if err := w.Start(gctx); err != nil {
		return err
	}
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return w.Stop(stopCtx)
	})

	if res.Events != nil {
		g.Go(func() error {
			logger.Info("Consuming ledger events", "queue", cfg.AMQPQueue)
			err := res.Events.ConsumeLedgerEvents(gctx, w.HandleLedgerEvent)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		logger.Warn("AMQP disabled, relying on periodic exports only",
			"interval", cfg.ExportInterval.String())
	}

	if metricsHandler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
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
	}

	logger.Info("Starting fintrack-worker",
		"backend", cfg.DataBackend,
		"sheets", cfg.SheetsEnabled(),
		"events", res.Events != nil)
	return g.Wait()
}
