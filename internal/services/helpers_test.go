package services

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"rateio/internal/amqp"
	"rateio/internal/core"
	"rateio/internal/log"
	"rateio/internal/storage"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate() { c.calls++ }

type env struct {
	repo      *storage.SQLiteRepository
	publisher *recordingPublisher
	dashboard *countingInvalidator
	alice     core.Person
	bob       core.Person
	home      core.Account
}

func newEnv(t *testing.T) *env {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "rateio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	e := &env{
		repo:      repo,
		publisher: &recordingPublisher{},
		dashboard: &countingInvalidator{},
		alice:     core.Person{Name: "Alice", DefaultShare: d("0.5"), Active: true},
		bob:       core.Person{Name: "Bob", DefaultShare: d("0.5"), Active: true},
		home:      core.Account{Name: "Home", DefaultSplitPrimary: d("0.5"), DefaultSplitSecondary: d("0.5")},
	}
	require.NoError(t, repo.CreatePerson(ctx, &e.alice))
	require.NoError(t, repo.CreatePerson(ctx, &e.bob))
	require.NoError(t, repo.CreateAccount(ctx, &e.home))
	return e
}

func (e *env) expenses() *ExpenseService {
	return NewExpenseService(e.repo, e.publisher, e.dashboard, nil, testLogger())
}

func (e *env) recurring() *RecurringProcessor {
	return NewRecurringProcessor(e.repo, e.publisher, e.dashboard, nil, testLogger())
}

func (e *env) halfHalf(desc string, amount string, date core.Date) core.Expense {
	return core.Expense{
		Description: desc,
		Amount:      d(amount),
		Date:        date,
		PaidByID:    e.alice.ID,
		AccountID:   e.home.ID,
		Splits: []core.Split{
			{PersonID: e.alice.ID, Percentage: d("0.5")},
			{PersonID: e.bob.ID, Percentage: d("0.5")},
		},
	}
}
