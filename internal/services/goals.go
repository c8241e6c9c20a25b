package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/finanse/internal/auth"
	"github.com/dmitrijs2005/finanse/internal/dbx"
	"github.com/dmitrijs2005/finanse/internal/local/goals"
	"github.com/dmitrijs2005/finanse/internal/local/notify"
	"github.com/dmitrijs2005/finanse/internal/logging"
	"github.com/dmitrijs2005/finanse/internal/models"
	"github.com/dmitrijs2005/finanse/internal/remote"
)

// GoalService coordinates financial-goal mutations. The progress update is
// the one read-modify-write in the engine that must be transactional: the
// new CurrentAmount and the recomputed IsCompleted always land together.
type GoalService struct {
	db    *sql.DB
	hub   *notify.Hub
	repo  goals.Repository
	store remote.Store
	log   logging.Logger
}

func NewGoalService(db *sql.DB, hub *notify.Hub, repo goals.Repository, store remote.Store, log logging.Logger) *GoalService {
	return &GoalService{db: db, hub: hub, repo: repo, store: store, log: log}
}

// Create inserts a new goal for the acting principal.
func (s *GoalService) Create(ctx context.Context, p auth.Principal, g *models.FinancialGoal) (Outcome, error) {
	if g.Id == "" {
		g.Id = uuid.NewString()
	}
	g.UserId = p.UserID
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.IsCompleted = g.CurrentAmount >= g.TargetAmount

	if err := s.repo.Insert(ctx, g); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to create goal: %w", err)
	}

	return s.propagate(ctx, g), nil
}

// AddAmount adds delta to the goal's CurrentAmount and recomputes
// IsCompleted in the same local transaction. Negative deltas are accepted
// and can flip a completed goal back to active; callers are expected to
// keep CurrentAmount non-negative.
func (s *GoalService) AddAmount(ctx context.Context, id string, delta float64) (*models.FinancialGoal, Outcome, error) {
	var updated *models.FinancialGoal

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := goals.NewSQLiteRepository(tx, s.hub)

		g, err := txRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		g.CurrentAmount += delta
		g.IsCompleted = g.CurrentAmount >= g.TargetAmount

		if err := txRepo.Update(ctx, g); err != nil {
			return err
		}

		updated = g
		return nil
	})
	if err != nil {
		return nil, OutcomeDeferred, err
	}

	return updated, s.propagate(ctx, updated), nil
}

// Delete removes a goal locally, then best-effort remotely.
func (s *GoalService) Delete(ctx context.Context, id string) (Outcome, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to delete goal: %w", err)
	}

	if err := s.store.Delete(ctx, remote.CollectionGoals, id); err != nil {
		s.log.Warn(ctx, "remote delete deferred", "goal_id", id, "error", err)
		return OutcomeDeferred, nil
	}
	return OutcomePropagated, nil
}

func (s *GoalService) propagate(ctx context.Context, g *models.FinancialGoal) Outcome {
	if err := s.store.Set(ctx, remote.CollectionGoals, g.Id, g.Document()); err != nil {
		s.log.Warn(ctx, "remote propagation deferred", "goal_id", g.Id, "error", err)
		return OutcomeDeferred
	}
	return OutcomePropagated
}
