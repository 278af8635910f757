package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rateio/internal/core"
	"rateio/internal/storage"
)

func testDefaults() Defaults {
	return Defaults{PersonShare: d("0.4"), SplitPrimary: d("0.6"), SplitSecondary: d("0.4")}
}

func TestDirectoryService_People(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	svc := NewDirectoryService(env.repo, testDefaults(), env.dashboard, testLogger())

	name := "  Carol  "
	p, err := svc.CreatePerson(ctx, core.PersonPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Carol", p.Name)
	assert.Equal(t, "0.4", p.DefaultShare.String())
	assert.True(t, p.Active)

	blank := " "
	_, err = svc.CreatePerson(ctx, core.PersonPatch{Name: &blank})
	assert.ErrorIs(t, err, core.ErrEmptyName)

	_, err = svc.CreatePerson(ctx, core.PersonPatch{Name: &name})
	assert.ErrorIs(t, err, storage.ErrConflict)

	share := d("1.2")
	_, err = svc.UpdatePerson(ctx, p.ID, core.PersonPatch{DefaultShare: &share})
	assert.ErrorIs(t, err, core.ErrInvalidPercentage)

	inactive := false
	updated, err := svc.UpdatePerson(ctx, p.ID, core.PersonPatch{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, "Carol", updated.Name)

	require.NoError(t, svc.DeletePerson(ctx, p.ID))
	_, err = svc.GetPerson(ctx, p.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDirectoryService_Accounts(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	svc := NewDirectoryService(env.repo, testDefaults(), nil, testLogger())

	name := "Holidays"
	a, err := svc.CreateAccount(ctx, core.AccountPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "0.6", a.DefaultSplitPrimary.String())
	assert.Equal(t, "0.4", a.DefaultSplitSecondary.String())

	primary := d("0.9")
	_, err = svc.UpdateAccount(ctx, a.ID, core.AccountPatch{DefaultSplitPrimary: &primary})
	assert.ErrorIs(t, err, core.ErrSharesTotal)

	secondary := d("0.1")
	updated, err := svc.UpdateAccount(ctx, a.ID, core.AccountPatch{DefaultSplitPrimary: &primary, DefaultSplitSecondary: &secondary})
	require.NoError(t, err)
	assert.Equal(t, "0.9", updated.DefaultSplitPrimary.String())

	accounts, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	require.NoError(t, svc.DeleteAccount(ctx, a.ID))
	assert.ErrorIs(t, svc.DeleteAccount(ctx, a.ID), storage.ErrNotFound)
}
