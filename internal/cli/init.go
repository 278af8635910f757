// Package cli holds the startup steps shared by cmd/rateio,
// cmd/recurring-worker and cmd/ledger-worker.
package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rateio/internal/amqp"
	"rateio/internal/config"
	"rateio/internal/log"
	"rateio/internal/metrics"
	"rateio/internal/services"
	"rateio/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from cfg and installs it as the
// slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     cfg.SlogLevel(),
		Format:    cfg.LogFormat,
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and the logger it describes.
// The process exits on validation failure.
func LoadAndValidateConfig(component string) (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg, component)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldErrorType, log.ErrorTypeConfiguration,
			log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// InitSQLite opens the ledger database, running migrations first.
// The process exits on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			log.FieldErrorType, log.ErrorTypeDatabase,
			log.FieldError, err,
			"path", dbPath)
		os.Exit(1)
	}
	return repo
}

// InitPublisher connects the ledger event publisher when AMQP is
// configured. A connection failure is logged and events are disabled; the
// returned publisher is then nil and close is a no-op.
func InitPublisher(cfg *config.Config, logger *log.Logger) (publisher services.EventPublisher, closeFn func()) {
	if !cfg.AMQPEnabled() {
		logger.Info("AMQP disabled, ledger events will not be published")
		return nil, func() {}
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, ledger events disabled",
			log.FieldErrorType, log.ErrorTypeNetwork,
			log.FieldError, err)
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// WorkerMetrics returns the registry for a worker binary, or nil when no
// listener port is configured so that nothing is counted unread.
func WorkerMetrics(cfg *config.Config) *metrics.Metrics {
	if cfg.WorkerMetricsPort == "" {
		return nil
	}
	return metrics.New()
}

// ServeMetrics exposes m on addr until ctx is done. A nil m serves
// nothing and returns when ctx is done.
func ServeMetrics(ctx context.Context, addr string, m *metrics.Metrics, logger *log.Logger) error {
	if m == nil {
		<-ctx.Done()
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving worker metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
