package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rateio/internal/amqp"
	"rateio/internal/core"
	"rateio/internal/log"
)

func testLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(log.Config{Output: buf, Level: slog.LevelDebug, Format: "json"})
}

type countingRunner struct {
	mu    sync.Mutex
	calls int
	refs  []*core.Date
	err   error
}

func (r *countingRunner) RunDue(_ context.Context, ref *core.Date) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.refs = append(r.refs, ref)
	return 1, r.err
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestRecurringScheduler_RunsOnStartAndTick(t *testing.T) {
	runner := &countingRunner{}
	s := NewRecurringScheduler(runner, 10*time.Millisecond, testLogger(&bytes.Buffer{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return runner.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	for _, ref := range runner.refs {
		assert.Nil(t, ref, "scheduler always sweeps up to today")
	}
}

func TestRecurringScheduler_KeepsRunningAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	runner := &countingRunner{err: errors.New("database is locked")}
	s := NewRecurringScheduler(runner, 10*time.Millisecond, testLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return runner.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, buf.String(), "Recurring sweep failed")
}

type stubComputer struct {
	summary core.Summary
	err     error
	calls   int
}

func (s *stubComputer) Compute(context.Context) (core.Summary, error) {
	s.calls++
	return s.summary, s.err
}

func TestSettlementWorker_HandleEvent(t *testing.T) {
	var buf bytes.Buffer
	computer := &stubComputer{summary: core.Summary{
		TotalExpenses: decimal.RequireFromString("120"),
		Settlements: []core.Transfer{
			{PayerID: 2, ReceiverID: 1, Amount: decimal.RequireFromString("60")},
		},
	}}
	w := NewSettlementWorker(computer, nil, testLogger(&buf))

	err := w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.ExpenseCreated, 7))
	require.NoError(t, err)
	assert.Equal(t, 1, computer.calls)

	out := buf.String()
	assert.Contains(t, out, "Settlements recomputed")
	assert.Contains(t, out, `"total_expenses":"120.00"`)
	assert.Contains(t, out, `"amount":"60.00"`)
}

func TestSettlementWorker_HandleEventError(t *testing.T) {
	computer := &stubComputer{err: errors.New("disk I/O error")}
	w := NewSettlementWorker(computer, nil, testLogger(&bytes.Buffer{}))

	err := w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.ExpenseDeleted, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expense.deleted")
}
