package storage

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

const expenseColumns = `id, description, amount, date, category, notes, paid_by_id, account_id, recurrence_rule_id, created_at`

func scanExpense(row interface{ Scan(...any) error }) (ExpenseRow, error) {
	var e ExpenseRow
	err := row.Scan(&e.ID, &e.Description, &e.Amount, &e.Date, &e.Category, &e.Notes,
		&e.PaidByID, &e.AccountID, &e.RecurrenceRuleID, &e.CreatedAt)
	return e, err
}

func (q *Queries) queryExpenses(ctx context.Context, query string, args ...any) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const listExpenses = `SELECT ` + expenseColumns + ` FROM expenses e
WHERE (?1 = 0 OR e.account_id = ?1)
  AND (?2 = 0 OR EXISTS (
        SELECT 1 FROM expense_splits s WHERE s.expense_id = e.id AND s.person_id = ?2))
ORDER BY e.date DESC, e.id DESC`

// ListExpensesParams filters by account and by split participant. Zero
// disables a filter.
type ListExpensesParams struct {
	AccountID int64
	PersonID  int64
}

func (q *Queries) ListExpenses(ctx context.Context, arg ListExpensesParams) ([]ExpenseRow, error) {
	return q.queryExpenses(ctx, listExpenses, arg.AccountID, arg.PersonID)
}

const listExpensesByRule = `SELECT ` + expenseColumns + ` FROM expenses
WHERE recurrence_rule_id = ?
ORDER BY date DESC, id DESC`

func (q *Queries) ListExpensesByRule(ctx context.Context, ruleID int64) ([]ExpenseRow, error) {
	return q.queryExpenses(ctx, listExpensesByRule, ruleID)
}

const getTemplateExpense = `SELECT ` + expenseColumns + ` FROM expenses
WHERE recurrence_rule_id = ?
ORDER BY date ASC, id ASC
LIMIT 1`

// GetTemplateExpense returns the earliest-dated expense tied to a rule.
func (q *Queries) GetTemplateExpense(ctx context.Context, ruleID int64) (ExpenseRow, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getTemplateExpense, ruleID))
}

const getExpense = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (ExpenseRow, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpense, id))
}

const createExpense = `INSERT INTO expenses
    (description, amount, date, category, notes, paid_by_id, account_id, recurrence_rule_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + expenseColumns

type CreateExpenseParams struct {
	Description      string
	Amount           decimal.Decimal
	Date             string
	Category         string
	Notes            string
	PaidByID         int64
	AccountID        int64
	RecurrenceRuleID sql.NullInt64
	CreatedAt        string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (ExpenseRow, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.Description, arg.Amount, arg.Date, arg.Category, arg.Notes,
		arg.PaidByID, arg.AccountID, arg.RecurrenceRuleID, arg.CreatedAt)
	return scanExpense(row)
}

const updateExpense = `UPDATE expenses
SET description = ?, amount = ?, date = ?, category = ?, notes = ?,
    paid_by_id = ?, account_id = ?, recurrence_rule_id = ?
WHERE id = ?`

func (q *Queries) UpdateExpense(ctx context.Context, arg ExpenseRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateExpense,
		arg.Description, arg.Amount, arg.Date, arg.Category, arg.Notes,
		arg.PaidByID, arg.AccountID, arg.RecurrenceRuleID, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listSplitsByExpense = `SELECT id, expense_id, person_id, percentage, amount
FROM expense_splits WHERE expense_id = ? ORDER BY id`

func (q *Queries) ListSplitsByExpense(ctx context.Context, expenseID int64) ([]ExpenseSplitRow, error) {
	rows, err := q.db.QueryContext(ctx, listSplitsByExpense, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseSplitRow
	for rows.Next() {
		var s ExpenseSplitRow
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.PersonID, &s.Percentage, &s.Amount); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const createSplit = `INSERT INTO expense_splits (expense_id, person_id, percentage, amount)
VALUES (?, ?, ?, ?)
RETURNING id`

type CreateSplitParams struct {
	ExpenseID  int64
	PersonID   int64
	Percentage decimal.Decimal
	Amount     decimal.Decimal
}

func (q *Queries) CreateSplit(ctx context.Context, arg CreateSplitParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createSplit,
		arg.ExpenseID, arg.PersonID, arg.Percentage, arg.Amount).Scan(&id)
	return id, err
}

const deleteSplitsByExpense = `DELETE FROM expense_splits WHERE expense_id = ?`

func (q *Queries) DeleteSplitsByExpense(ctx context.Context, expenseID int64) error {
	_, err := q.db.ExecContext(ctx, deleteSplitsByExpense, expenseID)
	return err
}
