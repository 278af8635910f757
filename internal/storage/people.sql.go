package storage

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

const personColumns = `id, name, email, default_share, active`

func scanPerson(row interface{ Scan(...any) error }) (PersonRow, error) {
	var p PersonRow
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.DefaultShare, &p.Active)
	return p, err
}

const listPeople = `SELECT ` + personColumns + ` FROM people ORDER BY name`

func (q *Queries) ListPeople(ctx context.Context) ([]PersonRow, error) {
	rows, err := q.db.QueryContext(ctx, listPeople)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PersonRow
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const getPerson = `SELECT ` + personColumns + ` FROM people WHERE id = ?`

func (q *Queries) GetPerson(ctx context.Context, id int64) (PersonRow, error) {
	return scanPerson(q.db.QueryRowContext(ctx, getPerson, id))
}

const createPerson = `INSERT INTO people (name, email, default_share, active)
VALUES (?, ?, ?, ?)
RETURNING ` + personColumns

type CreatePersonParams struct {
	Name         string
	Email        sql.NullString
	DefaultShare decimal.Decimal
	Active       bool
}

func (q *Queries) CreatePerson(ctx context.Context, arg CreatePersonParams) (PersonRow, error) {
	row := q.db.QueryRowContext(ctx, createPerson, arg.Name, arg.Email, arg.DefaultShare, arg.Active)
	return scanPerson(row)
}

const updatePerson = `UPDATE people SET name = ?, email = ?, default_share = ?, active = ?
WHERE id = ?`

func (q *Queries) UpdatePerson(ctx context.Context, arg PersonRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updatePerson, arg.Name, arg.Email, arg.DefaultShare, arg.Active, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deletePerson = `DELETE FROM people WHERE id = ?`

func (q *Queries) DeletePerson(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePerson, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
