package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"rateio/internal/amqp"
	"rateio/internal/cli"
	"rateio/internal/config"
	"rateio/internal/log"
	"rateio/internal/services"
	"rateio/internal/worker"
)

var errAMQPRequired = errors.New("AMQP_URL is required for ledger-worker")

// ledger-worker consumes ledger events and recomputes the settlement plan
// after every change.
func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)

	if err := run(cfg, logger); err != nil {
		logger.Error("Ledger-worker failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Ledger-worker shutdown complete")
}

func run(cfg *config.Config, logger *log.Logger) error {
	if !cfg.AMQPEnabled() {
		return errAMQPRequired
	}
	logger.Info("Starting ledger-worker", "queue", cfg.AMQPQueue)

	ctx, stop := cli.SignalContext()
	defer stop()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	m := cli.WorkerMetrics(cfg)
	dashboard := services.NewDashboardService(repo, nil, m, logger)
	settlements := worker.NewSettlementWorker(dashboard, m, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cli.ServeMetrics(ctx, ":"+cfg.WorkerMetricsPort, m, logger)
	})
	g.Go(func() error {
		err := client.Consume(ctx, settlements.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
