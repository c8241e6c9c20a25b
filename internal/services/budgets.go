package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/finanse/internal/auth"
	"github.com/dmitrijs2005/finanse/internal/local/budgets"
	"github.com/dmitrijs2005/finanse/internal/local/transactions"
	"github.com/dmitrijs2005/finanse/internal/logging"
	"github.com/dmitrijs2005/finanse/internal/models"
	"github.com/dmitrijs2005/finanse/internal/remote"
)

// BudgetService coordinates budget mutations and answers spending-vs-budget
// questions from the local store.
type BudgetService struct {
	repo   budgets.Repository
	txRepo transactions.Repository
	store  remote.Store
	log    logging.Logger
}

func NewBudgetService(repo budgets.Repository, txRepo transactions.Repository, store remote.Store, log logging.Logger) *BudgetService {
	return &BudgetService{repo: repo, txRepo: txRepo, store: store, log: log}
}

// Save upserts a budget for the acting principal.
func (s *BudgetService) Save(ctx context.Context, p auth.Principal, b *models.Budget) (Outcome, error) {
	if b.Id == "" {
		b.Id = uuid.NewString()
	}
	b.UserId = p.UserID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.Insert(ctx, b); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to save budget: %w", err)
	}

	if err := s.store.Set(ctx, remote.CollectionBudgets, b.Id, b.Document()); err != nil {
		s.log.Warn(ctx, "remote propagation deferred", "budget_id", b.Id, "error", err)
		return OutcomeDeferred, nil
	}
	return OutcomePropagated, nil
}

// Delete removes a budget locally, then best-effort remotely.
func (s *BudgetService) Delete(ctx context.Context, id string) (Outcome, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to delete budget: %w", err)
	}

	if err := s.store.Delete(ctx, remote.CollectionBudgets, id); err != nil {
		s.log.Warn(ctx, "remote delete deferred", "budget_id", id, "error", err)
		return OutcomeDeferred, nil
	}
	return OutcomePropagated, nil
}

// SpentInPeriod sums the user's expenses against a budget for the period
// containing now. A weekly period starts on Monday 00:00 UTC; a monthly
// period on the first of the month.
func (s *BudgetService) SpentInPeriod(ctx context.Context, b *models.Budget, now time.Time) (float64, error) {
	start := periodStart(b.Period, now)

	if b.CategoryId == "" {
		return s.txRepo.TotalByTypeAndDateRange(ctx, b.UserId, models.TransactionTypeExpense, start, now)
	}

	list, err := s.txRepo.GetAllByDateRange(ctx, b.UserId, start, now)
	if err != nil {
		return 0, err
	}
	var total float64
	for i := range list {
		if list[i].Type == models.TransactionTypeExpense && list[i].CategoryId == b.CategoryId {
			total += list[i].Amount
		}
	}
	return total, nil
}

func periodStart(p models.BudgetPeriod, now time.Time) time.Time {
	now = now.UTC()
	switch p {
	case models.BudgetPeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		weekday := int(day.Weekday())
		if weekday == 0 { // Sunday belongs to the week that started last Monday
			weekday = 7
		}
		return day.AddDate(0, 0, -(weekday - 1))
	}
}
