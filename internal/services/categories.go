package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/finanse/internal/auth"
	"github.com/dmitrijs2005/finanse/internal/common"
	"github.com/dmitrijs2005/finanse/internal/local/categories"
	"github.com/dmitrijs2005/finanse/internal/logging"
	"github.com/dmitrijs2005/finanse/internal/models"
	"github.com/dmitrijs2005/finanse/internal/remote"
)

// CategoryService coordinates category mutations. System categories are
// immutable for non-admin principals.
type CategoryService struct {
	repo  categories.Repository
	store remote.Store
	log   logging.Logger
}

func NewCategoryService(repo categories.Repository, store remote.Store, log logging.Logger) *CategoryService {
	return &CategoryService{repo: repo, store: store, log: log}
}

// defaultCategories are seeded on first run as system-owned defaults.
var defaultCategories = []models.Category{
	{Name: "Salary", Type: models.TransactionTypeIncome},
	{Name: "Gifts", Type: models.TransactionTypeIncome},
	{Name: "Investments", Type: models.TransactionTypeIncome},
	{Name: "Groceries", Type: models.TransactionTypeExpense},
	{Name: "Transport", Type: models.TransactionTypeExpense},
	{Name: "Cafes and restaurants", Type: models.TransactionTypeExpense},
	{Name: "Utilities", Type: models.TransactionTypeExpense},
	{Name: "Entertainment", Type: models.TransactionTypeExpense},
	{Name: "Health", Type: models.TransactionTypeExpense},
	{Name: "Clothing", Type: models.TransactionTypeExpense},
}

// SeedDefaults inserts the default system categories once. A second call is
// a no-op: seeding is skipped as soon as any system category exists.
func (s *CategoryService) SeedDefaults(ctx context.Context) error {
	existing, err := s.repo.GetSystem(ctx)
	if err != nil {
		return fmt.Errorf("failed to check system categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	seed := make([]models.Category, len(defaultCategories))
	for i, c := range defaultCategories {
		c.Id = uuid.NewString()
		c.IsSystem = true
		c.IsDefault = true
		seed[i] = c
	}

	if err := s.repo.InsertBatch(ctx, seed); err != nil {
		return fmt.Errorf("failed to seed default categories: %w", err)
	}

	for i := range seed {
		c := &seed[i]
		if err := s.store.Set(ctx, remote.CollectionCategories, c.Id, c.Document()); err != nil {
			s.log.Warn(ctx, "remote propagation deferred", "category_id", c.Id, "error", err)
		}
	}

	s.log.Info(ctx, "seeded default categories", "count", len(seed))
	return nil
}

// Create inserts a user-owned category. Only admins may create system
// categories.
func (s *CategoryService) Create(ctx context.Context, p auth.Principal, c *models.Category) (Outcome, error) {
	if c.IsSystem && !p.IsAdmin() {
		return OutcomeDeferred, common.ErrUnauthorized
	}
	if c.Id == "" {
		c.Id = uuid.NewString()
	}
	if !c.IsSystem {
		c.CreatedBy = p.UserID
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to create category: %w", err)
	}

	return s.propagate(ctx, c), nil
}

// Update rewrites a category. System categories reject non-admin updates.
func (s *CategoryService) Update(ctx context.Context, p auth.Principal, c *models.Category) (Outcome, error) {
	current, err := s.repo.GetByID(ctx, c.Id)
	if err != nil {
		return OutcomeDeferred, err
	}
	if current.IsSystem && !p.IsAdmin() {
		return OutcomeDeferred, common.ErrSystemCategory
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to update category: %w", err)
	}

	return s.propagate(ctx, c), nil
}

// Delete removes a category. Referencing transactions and budgets fall back
// to "no category" via the schema. System categories reject non-admin
// deletion.
func (s *CategoryService) Delete(ctx context.Context, p auth.Principal, id string) (Outcome, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return OutcomeDeferred, err
	}
	if current.IsSystem && !p.IsAdmin() {
		return OutcomeDeferred, common.ErrSystemCategory
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to delete category: %w", err)
	}

	if err := s.store.Delete(ctx, remote.CollectionCategories, id); err != nil {
		s.log.Warn(ctx, "remote delete deferred", "category_id", id, "error", err)
		return OutcomeDeferred, nil
	}
	return OutcomePropagated, nil
}

func (s *CategoryService) propagate(ctx context.Context, c *models.Category) Outcome {
	if err := s.store.Set(ctx, remote.CollectionCategories, c.Id, c.Document()); err != nil {
		s.log.Warn(ctx, "remote propagation deferred", "category_id", c.Id, "error", err)
		return OutcomeDeferred
	}
	return OutcomePropagated
}
