package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rateio/internal/amqp"
	"rateio/internal/core"
	"rateio/internal/log"
	"rateio/internal/metrics"
	"rateio/internal/storage"
)

// ExpenseService validates, allocates and persists expenses, then
// announces the change.
type ExpenseService struct {
	repo storage.Repository
	notifier
}

func NewExpenseService(repo storage.Repository, publisher EventPublisher, dashboard Invalidator, m *metrics.Metrics, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		repo: repo,
		notifier: notifier{
			publisher: publisher,
			dashboard: dashboard,
			metrics:   m,
			logger:    logger.WithComponent(log.ComponentExpense),
		},
	}
}

func (s *ExpenseService) List(ctx context.Context, filter storage.ExpenseFilter) ([]core.Expense, error) {
	return s.repo.ListExpenses(ctx, filter)
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.repo.GetExpense(ctx, id)
}

// Create validates e, derives split amounts from its percentages and
// stores expense and splits atomically.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := prepare(&e); err != nil {
		return core.Expense{}, err
	}

	err := s.repo.InTx(ctx, func(l storage.Ledger) error {
		if err := checkReferences(ctx, l, e); err != nil {
			return err
		}
		return l.CreateExpense(ctx, &e)
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.committed(ctx, amqp.ExpenseCreated, log.OpCreate, e)
	return e, nil
}

// Update applies patch and re-runs allocation over the whole expense, so
// an amount change alone still redistributes the split amounts.
func (s *ExpenseService) Update(ctx context.Context, id int64, patch core.ExpensePatch) (core.Expense, error) {
	var updated core.Expense
	err := s.repo.InTx(ctx, func(l storage.Ledger) error {
		e, err := l.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(&e)
		if err := prepare(&e); err != nil {
			return err
		}
		if err := checkReferences(ctx, l, e); err != nil {
			return err
		}
		if err := l.UpdateExpense(ctx, &e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}

	s.committed(ctx, amqp.ExpenseUpdated, log.OpUpdate, updated)
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.committed(ctx, amqp.ExpenseDeleted, log.OpDelete, core.Expense{ID: id})
	return nil
}

func (s *ExpenseService) committed(ctx context.Context, eventType amqp.EventType, op string, e core.Expense) {
	s.invalidate()
	s.metrics.ExpenseWritten(op)

	var ruleID int64
	if e.RecurrenceRuleID != nil {
		ruleID = *e.RecurrenceRuleID
	}
	s.emit(ctx, eventType, e.ID, ruleID)

	fields := log.NewFields().WithOperation(op)
	if op == log.OpDelete {
		fields[log.FieldExpenseID] = e.ID
	} else {
		fields.WithExpense(e.ID, e.Description, e.Amount, e.PaidByID, e.AccountID)
	}
	s.logger.LogFields(ctx, slog.LevelInfo, "Expense write committed", fields)
}

// prepare rounds the total to cents, validates e and fills in split
// amounts so they sum to the stored total.
func prepare(e *core.Expense) error {
	e.Amount = core.RoundCurrency(e.Amount)
	if err := e.Validate(); err != nil {
		return err
	}
	splits, err := core.AllocateSplits(e.Amount, e.Splits)
	if err != nil {
		return err
	}
	e.Splits = splits
	return nil
}

func checkReferences(ctx context.Context, l storage.Ledger, e core.Expense) error {
	if _, err := l.GetAccount(ctx, e.AccountID); err != nil {
		return reference(err, "account", e.AccountID)
	}
	seen := map[int64]bool{}
	for _, id := range append([]int64{e.PaidByID}, splitPeople(e.Splits)...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := l.GetPerson(ctx, id); err != nil {
			return reference(err, "person", id)
		}
	}
	if e.RecurrenceRuleID != nil {
		if _, err := l.GetRule(ctx, *e.RecurrenceRuleID); err != nil {
			return reference(err, "recurrence rule", *e.RecurrenceRuleID)
		}
	}
	return nil
}

func reference(err error, kind string, id int64) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &ReferenceError{Kind: kind, ID: id}
	}
	return err
}

func splitPeople(splits []core.Split) []int64 {
	ids := make([]int64, len(splits))
	for i, s := range splits {
		ids[i] = s.PersonID
	}
	return ids
}
