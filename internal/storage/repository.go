package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rateio/internal/core"

	_ "modernc.org/sqlite"
)

// ExpenseFilter narrows ListExpenses. Zero values disable a filter.
type ExpenseFilter struct {
	AccountID int64
	PersonID  int64
}

// Ledger is the persistence surface shared by the repository and the
// transactional view handed to InTx callbacks.
type Ledger interface {
	ListPeople(ctx context.Context) ([]core.Person, error)
	GetPerson(ctx context.Context, id int64) (core.Person, error)
	CreatePerson(ctx context.Context, p *core.Person) error
	UpdatePerson(ctx context.Context, p core.Person) error
	DeletePerson(ctx context.Context, id int64) error

	ListAccounts(ctx context.Context) ([]core.Account, error)
	GetAccount(ctx context.Context, id int64) (core.Account, error)
	CreateAccount(ctx context.Context, a *core.Account) error
	UpdateAccount(ctx context.Context, a core.Account) error
	DeleteAccount(ctx context.Context, id int64) error

	ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error)
	ListExpensesByRule(ctx context.Context, ruleID int64) ([]core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	TemplateExpense(ctx context.Context, ruleID int64) (core.Expense, error)
	CreateExpense(ctx context.Context, e *core.Expense) error
	UpdateExpense(ctx context.Context, e *core.Expense) error
	DeleteExpense(ctx context.Context, id int64) error

	ListRules(ctx context.Context) ([]core.RecurrenceRule, error)
	ListDueRules(ctx context.Context, ref core.Date) ([]core.RecurrenceRule, error)
	GetRule(ctx context.Context, id int64) (core.RecurrenceRule, error)
	CreateRule(ctx context.Context, r *core.RecurrenceRule) error
	UpdateRule(ctx context.Context, r core.RecurrenceRule) error
	DeleteRule(ctx context.Context, id int64) error
}

// Repository is a Ledger that can also run a callback atomically.
type Repository interface {
	Ledger
	InTx(ctx context.Context, fn func(Ledger) error) error
}

// Store implements Ledger on top of Queries.
type Store struct {
	q *Queries
}

var (
	_ Ledger     = (*Store)(nil)
	_ Repository = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	*Store
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection keeps transactions
	// from tripping over each other.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{Store: &Store{q: New(db)}, db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InTx runs fn inside a transaction, committing when it returns nil. fn
// must only use the Ledger it is given.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(Ledger) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Store{q: r.q.WithTx(tx)}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// People

func personFromRow(row PersonRow) core.Person {
	return core.Person{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email.String,
		DefaultShare: row.DefaultShare,
		Active:       row.Active,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) ListPeople(ctx context.Context) ([]core.Person, error) {
	rows, err := s.q.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	people := make([]core.Person, len(rows))
	for i, row := range rows {
		people[i] = personFromRow(row)
	}
	return people, nil
}

func (s *Store) GetPerson(ctx context.Context, id int64) (core.Person, error) {
	row, err := s.q.GetPerson(ctx, id)
	if err != nil {
		return core.Person{}, fmt.Errorf("get person %d: %w", id, translate(err))
	}
	return personFromRow(row), nil
}

func (s *Store) CreatePerson(ctx context.Context, p *core.Person) error {
	row, err := s.q.CreatePerson(ctx, CreatePersonParams{
		Name:         p.Name,
		Email:        nullString(p.Email),
		DefaultShare: p.DefaultShare,
		Active:       p.Active,
	})
	if err != nil {
		return fmt.Errorf("create person: %w", translate(err))
	}
	*p = personFromRow(row)
	return nil
}

func (s *Store) UpdatePerson(ctx context.Context, p core.Person) error {
	err := affected(s.q.UpdatePerson(ctx, PersonRow{
		ID:           p.ID,
		Name:         p.Name,
		Email:        nullString(p.Email),
		DefaultShare: p.DefaultShare,
		Active:       p.Active,
	}))
	if err != nil {
		return fmt.Errorf("update person %d: %w", p.ID, err)
	}
	return nil
}

func (s *Store) DeletePerson(ctx context.Context, id int64) error {
	if err := affected(s.q.DeletePerson(ctx, id)); err != nil {
		return fmt.Errorf("delete person %d: %w", id, err)
	}
	return nil
}

// Accounts

func accountFromRow(row AccountRow) core.Account {
	return core.Account(row)
}

func (s *Store) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := s.q.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	accounts := make([]core.Account, len(rows))
	for i, row := range rows {
		accounts[i] = accountFromRow(row)
	}
	return accounts, nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	row, err := s.q.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %d: %w", id, translate(err))
	}
	return accountFromRow(row), nil
}

func (s *Store) CreateAccount(ctx context.Context, a *core.Account) error {
	row, err := s.q.CreateAccount(ctx, CreateAccountParams{
		Name:                  a.Name,
		Description:           a.Description,
		DefaultSplitPrimary:   a.DefaultSplitPrimary,
		DefaultSplitSecondary: a.DefaultSplitSecondary,
	})
	if err != nil {
		return fmt.Errorf("create account: %w", translate(err))
	}
	*a = accountFromRow(row)
	return nil
}

func (s *Store) UpdateAccount(ctx context.Context, a core.Account) error {
	if err := affected(s.q.UpdateAccount(ctx, AccountRow(a))); err != nil {
		return fmt.Errorf("update account %d: %w", a.ID, err)
	}
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	if err := affected(s.q.DeleteAccount(ctx, id)); err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	return nil
}

// Expenses

func (s *Store) expenseFromRow(ctx context.Context, row ExpenseRow) (core.Expense, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d date %q: %w", row.ID, row.Date, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d created_at %q: %w", row.ID, row.CreatedAt, err)
	}

	splitRows, err := s.q.ListSplitsByExpense(ctx, row.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("list splits of expense %d: %w", row.ID, err)
	}
	splits := make([]core.Split, len(splitRows))
	for i, sr := range splitRows {
		splits[i] = core.Split{
			ID:         sr.ID,
			PersonID:   sr.PersonID,
			Percentage: sr.Percentage,
			Amount:     sr.Amount,
		}
	}

	e := core.Expense{
		ID:          row.ID,
		Description: row.Description,
		Amount:      row.Amount,
		Date:        date,
		Category:    row.Category,
		Notes:       row.Notes,
		PaidByID:    row.PaidByID,
		AccountID:   row.AccountID,
		CreatedAt:   createdAt,
		Splits:      splits,
	}
	if row.RecurrenceRuleID.Valid {
		id := row.RecurrenceRuleID.Int64
		e.RecurrenceRuleID = &id
	}
	return e, nil
}

func (s *Store) expensesFromRows(ctx context.Context, rows []ExpenseRow) ([]core.Expense, error) {
	expenses := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := s.expenseFromRow(ctx, row)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (s *Store) ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error) {
	rows, err := s.q.ListExpenses(ctx, ListExpensesParams(f))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return s.expensesFromRows(ctx, rows)
}

func (s *Store) ListExpensesByRule(ctx context.Context, ruleID int64) ([]core.Expense, error) {
	rows, err := s.q.ListExpensesByRule(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("list expenses of rule %d: %w", ruleID, err)
	}
	return s.expensesFromRows(ctx, rows)
}

func (s *Store) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row, err := s.q.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, translate(err))
	}
	return s.expenseFromRow(ctx, row)
}

// TemplateExpense returns the earliest-dated expense of a rule, or
// ErrNotFound when the rule has none.
func (s *Store) TemplateExpense(ctx context.Context, ruleID int64) (core.Expense, error) {
	row, err := s.q.GetTemplateExpense(ctx, ruleID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("template expense of rule %d: %w", ruleID, translate(err))
	}
	return s.expenseFromRow(ctx, row)
}

func (s *Store) insertSplits(ctx context.Context, expenseID int64, splits []core.Split) error {
	for i := range splits {
		id, err := s.q.CreateSplit(ctx, CreateSplitParams{
			ExpenseID:  expenseID,
			PersonID:   splits[i].PersonID,
			Percentage: splits[i].Percentage,
			Amount:     splits[i].Amount,
		})
		if err != nil {
			return fmt.Errorf("create split for person %d: %w", splits[i].PersonID, translate(err))
		}
		splits[i].ID = id
	}
	return nil
}

// CreateExpense inserts the expense and its splits, filling in the
// generated ids and created_at. Callers wanting atomicity run it in InTx.
func (s *Store) CreateExpense(ctx context.Context, e *core.Expense) error {
	createdAt := time.Now().UTC()
	row, err := s.q.CreateExpense(ctx, CreateExpenseParams{
		Description:      e.Description,
		Amount:           e.Amount,
		Date:             e.Date.String(),
		Category:         e.Category,
		Notes:            e.Notes,
		PaidByID:         e.PaidByID,
		AccountID:        e.AccountID,
		RecurrenceRuleID: nullID(e.RecurrenceRuleID),
		CreatedAt:        createdAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("create expense: %w", translate(err))
	}
	e.ID = row.ID
	e.CreatedAt = createdAt

	if err := s.insertSplits(ctx, e.ID, e.Splits); err != nil {
		return fmt.Errorf("create expense %d: %w", e.ID, err)
	}

	slog.DebugContext(ctx, "Expense saved",
		"id", e.ID,
		"amount", e.Amount.String(),
		"splits", len(e.Splits))
	return nil
}

// UpdateExpense overwrites the expense columns and replaces its split set.
func (s *Store) UpdateExpense(ctx context.Context, e *core.Expense) error {
	err := affected(s.q.UpdateExpense(ctx, ExpenseRow{
		ID:               e.ID,
		Description:      e.Description,
		Amount:           e.Amount,
		Date:             e.Date.String(),
		Category:         e.Category,
		Notes:            e.Notes,
		PaidByID:         e.PaidByID,
		AccountID:        e.AccountID,
		RecurrenceRuleID: nullID(e.RecurrenceRuleID),
	}))
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	if err := s.q.DeleteSplitsByExpense(ctx, e.ID); err != nil {
		return fmt.Errorf("clear splits of expense %d: %w", e.ID, err)
	}
	if err := s.insertSplits(ctx, e.ID, e.Splits); err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, id int64) error {
	if err := affected(s.q.DeleteExpense(ctx, id)); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return nil
}

// Recurrence rules

func ruleFromRow(row RecurrenceRuleRow) (core.RecurrenceRule, error) {
	anchor, err := core.ParseDate(row.AnchorDate)
	if err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("rule %d anchor_date %q: %w", row.ID, row.AnchorDate, err)
	}
	next, err := core.ParseDate(row.NextDueDate)
	if err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("rule %d next_due_date %q: %w", row.ID, row.NextDueDate, err)
	}
	r := core.RecurrenceRule{
		ID:                   row.ID,
		Frequency:            core.Frequency(row.Frequency),
		Interval:             int(row.IntervalCount),
		AnchorDate:           anchor,
		NextDueDate:          next,
		OccurrencesGenerated: int(row.OccurrencesGenerated),
		Active:               row.Active,
	}
	if row.TotalOccurrences.Valid {
		n := int(row.TotalOccurrences.Int64)
		r.TotalOccurrences = &n
	}
	return r, nil
}

func rulesFromRows(rows []RecurrenceRuleRow) ([]core.RecurrenceRule, error) {
	rules := make([]core.RecurrenceRule, 0, len(rows))
	for _, row := range rows {
		r, err := ruleFromRow(row)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func nullCount(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func (s *Store) ListRules(ctx context.Context) ([]core.RecurrenceRule, error) {
	rows, err := s.q.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurrence rules: %w", err)
	}
	return rulesFromRows(rows)
}

// ListDueRules returns active rules whose next due date is on or before ref.
func (s *Store) ListDueRules(ctx context.Context, ref core.Date) ([]core.RecurrenceRule, error) {
	rows, err := s.q.ListDueRules(ctx, ref.String())
	if err != nil {
		return nil, fmt.Errorf("list due rules: %w", err)
	}
	return rulesFromRows(rows)
}

func (s *Store) GetRule(ctx context.Context, id int64) (core.RecurrenceRule, error) {
	row, err := s.q.GetRule(ctx, id)
	if err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("get recurrence rule %d: %w", id, translate(err))
	}
	return ruleFromRow(row)
}

func (s *Store) CreateRule(ctx context.Context, r *core.RecurrenceRule) error {
	row, err := s.q.CreateRule(ctx, CreateRuleParams{
		Frequency:            string(r.Frequency),
		IntervalCount:        int64(r.Interval),
		AnchorDate:           r.AnchorDate.String(),
		NextDueDate:          r.NextDueDate.String(),
		TotalOccurrences:     nullCount(r.TotalOccurrences),
		OccurrencesGenerated: int64(r.OccurrencesGenerated),
		Active:               r.Active,
	})
	if err != nil {
		return fmt.Errorf("create recurrence rule: %w", translate(err))
	}
	created, err := ruleFromRow(row)
	if err != nil {
		return err
	}
	*r = created
	return nil
}

func (s *Store) UpdateRule(ctx context.Context, r core.RecurrenceRule) error {
	err := affected(s.q.UpdateRule(ctx, RecurrenceRuleRow{
		ID:                   r.ID,
		Frequency:            string(r.Frequency),
		IntervalCount:        int64(r.Interval),
		AnchorDate:           r.AnchorDate.String(),
		NextDueDate:          r.NextDueDate.String(),
		TotalOccurrences:     nullCount(r.TotalOccurrences),
		OccurrencesGenerated: int64(r.OccurrencesGenerated),
		Active:               r.Active,
	}))
	if err != nil {
		return fmt.Errorf("update recurrence rule %d: %w", r.ID, err)
	}
	return nil
}

func (s *Store) DeleteRule(ctx context.Context, id int64) error {
	if err := affected(s.q.DeleteRule(ctx, id)); err != nil {
		return fmt.Errorf("delete recurrence rule %d: %w", id, err)
	}
	return nil
}
