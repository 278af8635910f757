package services

import (
	"context"
	"errors"
	"fmt"

	"rateio/internal/amqp"
	"rateio/internal/log"
	"rateio/internal/metrics"
)

// ErrNoTemplate is returned when a recurrence rule has no expense to copy.
var ErrNoTemplate = errors.New("no template expense for recurrence rule")

// ReferenceError reports a write that points at a person or account that
// does not exist.
type ReferenceError struct {
	Kind string
	ID   int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unknown %s %d", e.Kind, e.ID)
}

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// Invalidator drops cached aggregates after a write.
type Invalidator interface {
	Invalidate()
}

// notifier fans a committed write out to the dashboard cache and the
// event bus. Publishing is best effort: the write already succeeded.
type notifier struct {
	publisher EventPublisher
	dashboard Invalidator
	metrics   *metrics.Metrics
	logger    *log.Logger
}

func (n notifier) invalidate() {
	if n.dashboard != nil {
		n.dashboard.Invalidate()
	}
}

func (n notifier) emit(ctx context.Context, eventType amqp.EventType, expenseID, ruleID int64) {
	if n.publisher == nil {
		n.logger.DebugContext(ctx, "AMQP publisher not configured, skipping ledger event",
			log.FieldEventType, eventType, log.FieldExpenseID, expenseID)
		return
	}
	event := amqp.NewLedgerEvent(eventType, expenseID)
	event.RuleID = ruleID
	err := n.publisher.Publish(ctx, event)
	n.metrics.EventPublished(string(eventType), err)
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventType, eventType,
			log.FieldExpenseID, expenseID,
			log.FieldError, err)
	}
}
