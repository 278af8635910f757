package main

import (
	"os"

	"golang.org/x/sync/errgroup"

	"rateio/internal/cli"
	"rateio/internal/config"
	"rateio/internal/log"
	"rateio/internal/services"
	"rateio/internal/worker"
)

// recurring-worker runs the due-rule sweep on its own, for deployments
// that start the API with RECURRING_ENABLED=false.
func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentScheduler)

	if err := run(cfg, logger); err != nil {
		logger.Error("Recurring scheduler failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Recurring-worker shutdown complete")
}

func run(cfg *config.Config, logger *log.Logger) error {
	logger.Info("Starting recurring-worker", "interval", cfg.RecurringInterval.String())

	ctx, stop := cli.SignalContext()
	defer stop()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	publisher, closePublisher := cli.InitPublisher(cfg, logger)
	defer closePublisher()

	m := cli.WorkerMetrics(cfg)
	// The API process owns the dashboard cache; its TTL bounds staleness
	// for occurrences generated here.
	processor := services.NewRecurringProcessor(repo, publisher, nil, m, logger)
	scheduler := worker.NewRecurringScheduler(processor, cfg.RecurringInterval, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cli.ServeMetrics(ctx, ":"+cfg.WorkerMetricsPort, m, logger)
	})
	g.Go(func() error {
		return scheduler.Run(ctx)
	})
	return g.Wait()
}
