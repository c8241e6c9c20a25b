package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/finanse/internal/local/metadata"
	"github.com/dmitrijs2005/finanse/internal/remote"
)

func newSweeper(env *testEnv) *Sweeper {
	s := NewSweeper(env.transactions, env.metadata, env.store, env.log)
	s.RetryAttempts = 1
	s.RetryDelay = time.Millisecond
	return s
}

func TestSweep_PropagatesPending(t *testing.T) {
	env := setupEnv(t)
	svc := NewTransactionService(env.transactions, env.store, env.log)
	ctx := context.Background()

	// remote down: both creates land locally as unsynced
	env.store.Err = context.DeadlineExceeded
	_, err := svc.Create(ctx, testPrincipal, newTestTx("t1"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, testPrincipal, newTestTx("t2"))
	require.NoError(t, err)

	// remote back up
	env.store.Err = nil

	res, err := newSweeper(env).Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Propagated)
	assert.Equal(t, 0, res.Deferred)

	for _, id := range []string{"t1", "t2"} {
		got, err := env.transactions.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.Synced)
		assert.NotNil(t, env.store.Doc(remote.CollectionTransactions, id))
	}

	// the completion timestamp was recorded
	v, err := env.metadata.Get(ctx, metadata.KeyLastSweepAt)
	require.NoError(t, err)
	assert.NotEmpty(t, v)
}

func TestSweep_SecondPassIsNoop(t *testing.T) {
	env := setupEnv(t)
	svc := NewTransactionService(env.transactions, env.store, env.log)
	ctx := context.Background()

	env.store.Err = context.DeadlineExceeded
	_, err := svc.Create(ctx, testPrincipal, newTestTx("t1"))
	require.NoError(t, err)
	env.store.Err = nil

	sweeper := newSweeper(env)

	res, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Propagated)
	assert.Equal(t, 1, env.store.SetCalls(remote.CollectionTransactions, "t1"))

	// nothing pending: the second pass sends nothing
	res, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Propagated)
	assert.Equal(t, 0, res.Deferred)
	assert.Equal(t, 1, env.store.SetCalls(remote.CollectionTransactions, "t1"))
}

func TestSweep_FailureIsolation(t *testing.T) {
	env := setupEnv(t)
	svc := NewTransactionService(env.transactions, env.store, env.log)
	ctx := context.Background()

	env.store.Err = context.DeadlineExceeded
	for _, id := range []string{"t1", "t2", "t3"} {
		_, err := svc.Create(ctx, testPrincipal, newTestTx(id))
		require.NoError(t, err)
	}
	env.store.Err = nil

	// t2 keeps failing; t1 and t3 must still propagate
	env.store.FailKey(remote.CollectionTransactions, "t2")

	res, err := newSweeper(env).Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Propagated)
	assert.Equal(t, 1, res.Deferred)

	got, err := env.transactions.GetByID(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, got.Synced)

	// once the record heals, the next pass picks it up
	env.store.HealKey(remote.CollectionTransactions, "t2")
	res, err = newSweeper(env).Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Propagated)
}

func TestSweep_RetryWithinPass(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.store.Err = context.DeadlineExceeded
	svc := NewTransactionService(env.transactions, env.store, env.log)
	_, err := svc.Create(ctx, testPrincipal, newTestTx("t1"))
	require.NoError(t, err)
	env.store.Err = nil

	sweeper := NewSweeper(env.transactions, env.metadata, env.store, env.log)
	sweeper.RetryAttempts = 3
	sweeper.RetryDelay = time.Millisecond

	res, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Propagated)
}
