package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/finanse/internal/common"
	"github.com/dmitrijs2005/finanse/internal/models"
	"github.com/dmitrijs2005/finanse/internal/remote"
)

func newGoalService(env *testEnv) *GoalService {
	return NewGoalService(env.db, env.hub, env.goals, env.store, env.log)
}

func newTestGoal(id string, target float64) *models.FinancialGoal {
	return &models.FinancialGoal{
		Id:           id,
		Name:         "Vacation",
		TargetAmount: target,
		Deadline:     time.UnixMilli(1800000000000).UTC(),
	}
}

func TestGoalAddAmount_CompletesGoal(t *testing.T) {
	env := setupEnv(t)
	svc := newGoalService(env)
	ctx := context.Background()

	_, err := svc.Create(ctx, testPrincipal, newTestGoal("g1", 100))
	require.NoError(t, err)

	g, outcome, err := svc.AddAmount(ctx, "g1", 60)
	require.NoError(t, err)
	assert.Equal(t, OutcomePropagated, outcome)
	assert.Equal(t, 60.0, g.CurrentAmount)
	assert.False(t, g.IsCompleted)

	g, _, err = svc.AddAmount(ctx, "g1", 40)
	require.NoError(t, err)
	assert.Equal(t, 100.0, g.CurrentAmount)
	assert.True(t, g.IsCompleted)

	// the completion flag is persisted, not just computed in memory
	stored, err := env.goals.GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)

	doc := env.store.Doc(remote.CollectionGoals, "g1")
	require.NotNil(t, doc)
	assert.Equal(t, true, doc["isCompleted"])
}

func TestGoalAddAmount_NegativeDeltaReopens(t *testing.T) {
	env := setupEnv(t)
	svc := newGoalService(env)
	ctx := context.Background()

	_, err := svc.Create(ctx, testPrincipal, newTestGoal("g1", 100))
	require.NoError(t, err)

	_, _, err = svc.AddAmount(ctx, "g1", 120)
	require.NoError(t, err)

	g, _, err := svc.AddAmount(ctx, "g1", -50)
	require.NoError(t, err)
	assert.Equal(t, 70.0, g.CurrentAmount)
	assert.False(t, g.IsCompleted)
}

func TestGoalAddAmount_NotFound(t *testing.T) {
	env := setupEnv(t)
	svc := newGoalService(env)

	_, _, err := svc.AddAmount(context.Background(), "missing", 10)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGoalAddAmount_RemoteDown_LocalStateStands(t *testing.T) {
	env := setupEnv(t)
	svc := newGoalService(env)
	ctx := context.Background()

	_, err := svc.Create(ctx, testPrincipal, newTestGoal("g1", 100))
	require.NoError(t, err)

	env.store.FailKey(remote.CollectionGoals, "g1")

	g, outcome, err := svc.AddAmount(ctx, "g1", 100)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeferred, outcome)
	assert.True(t, g.IsCompleted)

	stored, err := env.goals.GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, stored.CurrentAmount)
	assert.True(t, stored.IsCompleted)
}
