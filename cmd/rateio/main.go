package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"rateio/internal/cache"
	"rateio/internal/cli"
	"rateio/internal/config"
	"rateio/internal/core"
	apphttp "rateio/internal/http"
	"rateio/internal/log"
	"rateio/internal/metrics"
	"rateio/internal/services"
	"rateio/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext()
	defer stop()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	publisher, closePublisher := cli.InitPublisher(cfg, logger)
	defer closePublisher()

	m := metrics.New()

	summaries := cache.NewLRUCache[core.Summary](16, cfg.DashboardCacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(summaries)
	caches.StartCleanup(ctx, time.Minute)
	defer caches.Stop()

	dashboard := services.NewDashboardService(repo, summaries, m, logger)
	defaults := services.Defaults{
		PersonShare:    cfg.DefaultPersonShare,
		SplitPrimary:   cfg.DefaultSplitPrimary,
		SplitSecondary: cfg.DefaultSplitSecondary,
	}
	directory := services.NewDirectoryService(repo, defaults, dashboard, logger)
	expenses := services.NewExpenseService(repo, publisher, dashboard, m, logger)
	recurring := services.NewRecurringProcessor(repo, publisher, dashboard, m, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.NewHandler(directory, expenses, recurring, dashboard), apphttp.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		WriteRateLimit: cfg.WriteRateLimit,
		Metrics:        m,
		Logger:         logger,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting rateio server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port,
			"db", cfg.SQLiteDBPath,
			"recurring", cfg.RecurringEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.RecurringEnabled {
		scheduler := worker.NewRecurringScheduler(recurring, cfg.RecurringInterval, logger)
		g.Go(func() error { return scheduler.Run(ctx) })
	}

	return g.Wait()
}
