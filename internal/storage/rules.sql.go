package storage

import (
	"context"
	"database/sql"
)

const ruleColumns = `id, frequency, interval_count, anchor_date, next_due_date, total_occurrences, occurrences_generated, active`

func scanRule(row interface{ Scan(...any) error }) (RecurrenceRuleRow, error) {
	var r RecurrenceRuleRow
	err := row.Scan(&r.ID, &r.Frequency, &r.IntervalCount, &r.AnchorDate, &r.NextDueDate,
		&r.TotalOccurrences, &r.OccurrencesGenerated, &r.Active)
	return r, err
}

func (q *Queries) queryRules(ctx context.Context, query string, args ...any) ([]RecurrenceRuleRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurrenceRuleRow
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const listRules = `SELECT ` + ruleColumns + ` FROM recurrence_rules ORDER BY next_due_date, id`

func (q *Queries) ListRules(ctx context.Context) ([]RecurrenceRuleRow, error) {
	return q.queryRules(ctx, listRules)
}

const listDueRules = `SELECT ` + ruleColumns + ` FROM recurrence_rules
WHERE active = 1 AND next_due_date <= ?
ORDER BY next_due_date, id`

// ListDueRules relies on YYYY-MM-DD text sorting in date order.
func (q *Queries) ListDueRules(ctx context.Context, reference string) ([]RecurrenceRuleRow, error) {
	return q.queryRules(ctx, listDueRules, reference)
}

const getRule = `SELECT ` + ruleColumns + ` FROM recurrence_rules WHERE id = ?`

func (q *Queries) GetRule(ctx context.Context, id int64) (RecurrenceRuleRow, error) {
	return scanRule(q.db.QueryRowContext(ctx, getRule, id))
}

const createRule = `INSERT INTO recurrence_rules
    (frequency, interval_count, anchor_date, next_due_date, total_occurrences, occurrences_generated, active)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + ruleColumns

type CreateRuleParams struct {
	Frequency            string
	IntervalCount        int64
	AnchorDate           string
	NextDueDate          string
	TotalOccurrences     sql.NullInt64
	OccurrencesGenerated int64
	Active               bool
}

func (q *Queries) CreateRule(ctx context.Context, arg CreateRuleParams) (RecurrenceRuleRow, error) {
	row := q.db.QueryRowContext(ctx, createRule,
		arg.Frequency, arg.IntervalCount, arg.AnchorDate, arg.NextDueDate,
		arg.TotalOccurrences, arg.OccurrencesGenerated, arg.Active)
	return scanRule(row)
}

const updateRule = `UPDATE recurrence_rules
SET frequency = ?, interval_count = ?, anchor_date = ?, next_due_date = ?,
    total_occurrences = ?, occurrences_generated = ?, active = ?
WHERE id = ?`

func (q *Queries) UpdateRule(ctx context.Context, arg RecurrenceRuleRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateRule,
		arg.Frequency, arg.IntervalCount, arg.AnchorDate, arg.NextDueDate,
		arg.TotalOccurrences, arg.OccurrencesGenerated, arg.Active, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteRule = `DELETE FROM recurrence_rules WHERE id = ?`

func (q *Queries) DeleteRule(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteRule, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
