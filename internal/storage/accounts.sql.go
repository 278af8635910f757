package storage

import (
	"context"

	"github.com/shopspring/decimal"
)

const accountColumns = `id, name, description, default_split_primary, default_split_secondary`

func scanAccount(row interface{ Scan(...any) error }) (AccountRow, error) {
	var a AccountRow
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.DefaultSplitPrimary, &a.DefaultSplitSecondary)
	return a, err
}

const listAccounts = `SELECT ` + accountColumns + ` FROM accounts ORDER BY name`

func (q *Queries) ListAccounts(ctx context.Context) ([]AccountRow, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AccountRow
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const getAccount = `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

func (q *Queries) GetAccount(ctx context.Context, id int64) (AccountRow, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccount, id))
}

const createAccount = `INSERT INTO accounts (name, description, default_split_primary, default_split_secondary)
VALUES (?, ?, ?, ?)
RETURNING ` + accountColumns

type CreateAccountParams struct {
	Name                  string
	Description           string
	DefaultSplitPrimary   decimal.Decimal
	DefaultSplitSecondary decimal.Decimal
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (AccountRow, error) {
	row := q.db.QueryRowContext(ctx, createAccount,
		arg.Name, arg.Description, arg.DefaultSplitPrimary, arg.DefaultSplitSecondary)
	return scanAccount(row)
}

const updateAccount = `UPDATE accounts
SET name = ?, description = ?, default_split_primary = ?, default_split_secondary = ?
WHERE id = ?`

func (q *Queries) UpdateAccount(ctx context.Context, arg AccountRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateAccount,
		arg.Name, arg.Description, arg.DefaultSplitPrimary, arg.DefaultSplitSecondary, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteAccount = `DELETE FROM accounts WHERE id = ?`

func (q *Queries) DeleteAccount(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAccount, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
