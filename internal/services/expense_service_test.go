package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rateio/internal/amqp"
	"rateio/internal/core"
	"rateio/internal/storage"
)

func TestExpenseService_Create(t *testing.T) {
	env := newEnv(t)
	svc := env.expenses()
	ctx := context.Background()

	e := env.halfHalf("Dinner", "10.01", core.NewDate(2025, 4, 1))
	created, err := svc.Create(ctx, e)
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	require.Len(t, created.Splits, 2)
	assert.Equal(t, "5.01", created.Splits[0].Amount.StringFixed(2))
	assert.Equal(t, "5.00", created.Splits[1].Amount.StringFixed(2))

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.01", stored.Splits[0].Amount.StringFixed(2))

	assert.Equal(t, []amqp.EventType{amqp.ExpenseCreated}, env.publisher.types())
	assert.Equal(t, 1, env.dashboard.calls)
}

func TestExpenseService_CreateRoundsTotalBeforeAllocating(t *testing.T) {
	env := newEnv(t)
	e := env.halfHalf("Odd", "10.005", core.NewDate(2025, 4, 1))

	created, err := env.expenses().Create(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "10.01", created.Amount.StringFixed(2))
	sum := created.Splits[0].Amount.Add(created.Splits[1].Amount)
	assert.True(t, sum.Equal(created.Amount))
}

func TestExpenseService_CreateValidation(t *testing.T) {
	env := newEnv(t)
	svc := env.expenses()
	ctx := context.Background()

	noSplits := env.halfHalf("x", "10", core.NewDate(2025, 4, 1))
	noSplits.Splits = nil
	_, err := svc.Create(ctx, noSplits)
	assert.ErrorIs(t, err, core.ErrNoSplits)

	badShares := env.halfHalf("x", "10", core.NewDate(2025, 4, 1))
	badShares.Splits[1].Percentage = d("0.3")
	_, err = svc.Create(ctx, badShares)
	assert.ErrorIs(t, err, core.ErrSharesTotal)

	unknownPerson := env.halfHalf("x", "10", core.NewDate(2025, 4, 1))
	unknownPerson.Splits[1].PersonID = 999
	_, err = svc.Create(ctx, unknownPerson)
	var refErr *ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "person", refErr.Kind)
	assert.Equal(t, int64(999), refErr.ID)

	all, err := svc.List(ctx, storage.ExpenseFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, env.publisher.types())
}

func TestExpenseService_UpdateReallocates(t *testing.T) {
	env := newEnv(t)
	svc := env.expenses()
	ctx := context.Background()

	created, err := svc.Create(ctx, env.halfHalf("Rent", "100", core.NewDate(2025, 4, 1)))
	require.NoError(t, err)

	amount := d("33.33")
	updated, err := svc.Update(ctx, created.ID, core.ExpensePatch{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "16.67", updated.Splits[0].Amount.StringFixed(2))
	assert.Equal(t, "16.66", updated.Splits[1].Amount.StringFixed(2))

	splits := []core.Split{
		{PersonID: env.alice.ID, Percentage: d("0.25")},
		{PersonID: env.bob.ID, Percentage: d("0.75")},
	}
	updated, err = svc.Update(ctx, created.ID, core.ExpensePatch{Splits: &splits})
	require.NoError(t, err)
	assert.Equal(t, "8.33", updated.Splits[0].Amount.StringFixed(2))
	assert.Equal(t, "25.00", updated.Splits[1].Amount.StringFixed(2))

	_, err = svc.Update(ctx, 999, core.ExpensePatch{Amount: &amount})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.Equal(t, []amqp.EventType{amqp.ExpenseCreated, amqp.ExpenseUpdated, amqp.ExpenseUpdated}, env.publisher.types())
}

func TestExpenseService_Delete(t *testing.T) {
	env := newEnv(t)
	svc := env.expenses()
	ctx := context.Background()

	created, err := svc.Create(ctx, env.halfHalf("Taxi", "12", core.NewDate(2025, 4, 1)))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), storage.ErrNotFound)
	assert.Equal(t, amqp.ExpenseDeleted, env.publisher.types()[1])
}

func TestExpenseService_PublishFailureDoesNotFailWrite(t *testing.T) {
	env := newEnv(t)
	env.publisher.err = errors.New("broker down")

	created, err := env.expenses().Create(context.Background(), env.halfHalf("Taxi", "12", core.NewDate(2025, 4, 1)))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestExpenseService_NilPublisher(t *testing.T) {
	env := newEnv(t)
	svc := NewExpenseService(env.repo, nil, nil, nil, testLogger())

	_, err := svc.Create(context.Background(), env.halfHalf("Taxi", "12", core.NewDate(2025, 4, 1)))
	assert.NoError(t, err)
}
