package worker

import (
	"context"
	"fmt"
	"log/slog"

	"rateio/internal/amqp"
	"rateio/internal/core"
	"rateio/internal/log"
	"rateio/internal/metrics"
)

// SummaryComputer aggregates the ledger from storage.
type SummaryComputer interface {
	Compute(ctx context.Context) (core.Summary, error)
}

// SettlementWorker reacts to ledger events by recomputing who owes whom and
// logging the resulting transfer plan.
type SettlementWorker struct {
	dashboard SummaryComputer
	metrics   *metrics.Metrics
	logger    *log.Logger
}

func NewSettlementWorker(dashboard SummaryComputer, m *metrics.Metrics, logger *log.Logger) *SettlementWorker {
	return &SettlementWorker{
		dashboard: dashboard,
		metrics:   m,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent is the amqp consumer callback. Returning an error asks the
// client to redeliver once.
func (w *SettlementWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	summary, err := w.dashboard.Compute(ctx)
	w.metrics.EventConsumed(string(event.Type), err)
	if err != nil {
		return fmt.Errorf("recompute settlements after %s: %w", event.Type, err)
	}

	w.logger.InfoContext(ctx, "Settlements recomputed",
		log.FieldOperation, log.OpSettle,
		log.FieldEventType, event.Type,
		log.FieldMessageID, event.MessageID,
		log.FieldExpenseID, event.ExpenseID,
		"total_expenses", summary.TotalExpenses.StringFixed(2),
		log.FieldTransfers, len(summary.Settlements))

	for _, t := range summary.Settlements {
		w.logger.Log(ctx, slog.LevelDebug, "Settlement transfer",
			"payer_id", t.PayerID,
			"receiver_id", t.ReceiverID,
			log.FieldAmount, t.Amount.StringFixed(2))
	}
	return nil
}
