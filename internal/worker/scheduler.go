package worker

import (
	"context"
	"time"

	"rateio/internal/core"
	"rateio/internal/log"
)

// DueRunner generates the occurrences of every rule due by ref.
type DueRunner interface {
	RunDue(ctx context.Context, ref *core.Date) (int, error)
}

// RecurringScheduler runs the due-rule sweep on startup and then on a
// fixed interval.
type RecurringScheduler struct {
	runner   DueRunner
	interval time.Duration
	logger   *log.Logger
}

func NewRecurringScheduler(runner DueRunner, interval time.Duration, logger *log.Logger) *RecurringScheduler {
	return &RecurringScheduler{
		runner:   runner,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentScheduler),
	}
}

// Run blocks until ctx is cancelled. A failed sweep is logged and retried
// on the next tick.
func (s *RecurringScheduler) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Recurring scheduler started", "interval", s.interval.String())

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Recurring scheduler stopped", log.FieldOperation, log.OpShutdown)
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *RecurringScheduler) tick(ctx context.Context) {
	n, err := s.runner.RunDue(ctx, nil)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.ErrorContext(ctx, "Recurring sweep failed",
			log.FieldOperation, log.OpRunDue,
			log.FieldError, err)
		return
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "Recurring sweep generated expenses",
			log.FieldGenerated, n,
			"next_check", time.Now().Add(s.interval).Format("15:04:05"))
	}
}
