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

// RecurringProcessor manages recurrence rules and turns due rules into
// expenses by copying each rule's template expense.
type RecurringProcessor struct {
	repo  storage.Repository
	today func() core.Date
	notifier
}

func NewRecurringProcessor(repo storage.Repository, publisher EventPublisher, dashboard Invalidator, m *metrics.Metrics, logger *log.Logger) *RecurringProcessor {
	return &RecurringProcessor{
		repo:  repo,
		today: core.Today,
		notifier: notifier{
			publisher: publisher,
			dashboard: dashboard,
			metrics:   m,
			logger:    logger.WithComponent(log.ComponentRecurrence),
		},
	}
}

func (p *RecurringProcessor) ListRules(ctx context.Context) ([]core.RecurrenceRule, error) {
	return p.repo.ListRules(ctx)
}

func (p *RecurringProcessor) GetRule(ctx context.Context, id int64) (core.RecurrenceRule, error) {
	return p.repo.GetRule(ctx, id)
}

// CreateRule applies patch over the defaults: monthly, every 1, active.
// Anchor and next due date are required.
func (p *RecurringProcessor) CreateRule(ctx context.Context, patch core.RulePatch) (core.RecurrenceRule, error) {
	r := core.RecurrenceRule{
		Frequency: core.Monthly,
		Interval:  1,
		Active:    true,
	}
	patch.Apply(&r)
	if err := r.Validate(); err != nil {
		return core.RecurrenceRule{}, err
	}
	if err := p.repo.CreateRule(ctx, &r); err != nil {
		return core.RecurrenceRule{}, err
	}
	p.invalidate()
	return r, nil
}

func (p *RecurringProcessor) UpdateRule(ctx context.Context, id int64, patch core.RulePatch) (core.RecurrenceRule, error) {
	var updated core.RecurrenceRule
	err := p.repo.InTx(ctx, func(l storage.Ledger) error {
		r, err := l.GetRule(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(&r)
		if err := r.Validate(); err != nil {
			return err
		}
		if err := l.UpdateRule(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("update recurrence rule %d: %w", id, err)
	}
	p.invalidate()
	return updated, nil
}

// DeleteRule removes the rule; its expenses stay, detached.
func (p *RecurringProcessor) DeleteRule(ctx context.Context, id int64) error {
	if err := p.repo.DeleteRule(ctx, id); err != nil {
		return err
	}
	p.invalidate()
	return nil
}

// GenerateOccurrence creates one expense from rule id, dated ref when
// given and the rule's next due date otherwise, and advances the rule.
// Both happen in one transaction. It returns all expenses of the rule,
// newest first.
func (p *RecurringProcessor) GenerateOccurrence(ctx context.Context, id int64, ref *core.Date) ([]core.Expense, error) {
	var created core.Expense
	var expenses []core.Expense
	err := p.repo.InTx(ctx, func(l storage.Ledger) error {
		rule, err := l.GetRule(ctx, id)
		if err != nil {
			return err
		}
		if !rule.Active {
			return core.ErrRuleInactive
		}
		template, err := l.TemplateExpense(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNoTemplate
		}
		if err != nil {
			return err
		}

		due := rule.NextDueDate
		if ref != nil {
			due = *ref
		}
		if created, err = p.generate(ctx, l, rule, template, due); err != nil {
			return err
		}
		expenses, err = l.ListExpensesByRule(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("generate occurrence of rule %d: %w", id, err)
	}

	p.afterGenerate(ctx, []core.Expense{created})
	return expenses, nil
}

// RunDue generates one occurrence for every active rule due on or before
// ref (today when nil), all in a single transaction. Rules without a
// template are skipped. It returns how many expenses were created.
func (p *RecurringProcessor) RunDue(ctx context.Context, ref *core.Date) (int, error) {
	reference := p.today()
	if ref != nil {
		reference = *ref
	}

	var created []core.Expense
	err := p.repo.InTx(ctx, func(l storage.Ledger) error {
		rules, err := l.ListDueRules(ctx, reference)
		if err != nil {
			return err
		}
		for _, rule := range rules {
			template, err := l.TemplateExpense(ctx, rule.ID)
			if errors.Is(err, storage.ErrNotFound) {
				p.logger.DebugContext(ctx, "Skipping rule without template",
					log.FieldRuleID, rule.ID)
				continue
			}
			if err != nil {
				return err
			}
			e, err := p.generate(ctx, l, rule, template, rule.NextDueDate)
			if err != nil {
				return err
			}
			created = append(created, e)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("run due recurrences: %w", err)
	}

	p.afterGenerate(ctx, created)
	p.logger.InfoContext(ctx, "Recurring run complete",
		log.FieldOperation, log.OpRunDue,
		log.FieldGenerated, len(created),
		"reference_date", reference.String())
	return len(created), nil
}

// generate advances rule first so an unknown frequency fails before any
// row is written.
func (p *RecurringProcessor) generate(ctx context.Context, l storage.Ledger, rule core.RecurrenceRule, template core.Expense, due core.Date) (core.Expense, error) {
	occurrence := core.InstantiateOccurrence(rule, template, due)
	if err := rule.Advance(); err != nil {
		return core.Expense{}, err
	}
	if err := l.CreateExpense(ctx, &occurrence); err != nil {
		return core.Expense{}, err
	}
	if err := l.UpdateRule(ctx, rule); err != nil {
		return core.Expense{}, err
	}
	p.logger.LogFields(ctx, slog.LevelDebug, "Occurrence generated", log.NewFields().
		WithRule(rule.ID, due.String()).
		WithExpense(occurrence.ID, occurrence.Description, occurrence.Amount, occurrence.PaidByID, occurrence.AccountID))
	return occurrence, nil
}

func (p *RecurringProcessor) afterGenerate(ctx context.Context, created []core.Expense) {
	if len(created) == 0 {
		return
	}
	p.invalidate()
	p.metrics.OccurrencesGenerated(len(created))
	for _, e := range created {
		p.emit(ctx, amqp.ExpenseGenerated, e.ID, *e.RecurrenceRuleID)
	}
}
