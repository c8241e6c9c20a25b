package budgets

import (
	"context"

	"github.com/dmitrijs2005/finanse/internal/models"
)

// Topic is the change-hub topic signalled after every write.
const Topic = "budgets"

// Repository describes CRUD operations for budgets in the local store.
type Repository interface {
	// GetByID returns one budget (one-shot read).
	GetByID(ctx context.Context, id string) (*models.Budget, error)

	// GetAllByUser returns the user's budgets (one-shot).
	GetAllByUser(ctx context.Context, userID string) ([]models.Budget, error)

	// GetByCategory returns the user's budget for a category; an empty
	// categoryID selects the whole-wallet budget.
	GetByCategory(ctx context.Context, userID, categoryID string) (*models.Budget, error)

	// Insert upserts a budget by id.
	Insert(ctx context.Context, b *models.Budget) error

	// Update rewrites an existing budget.
	Update(ctx context.Context, b *models.Budget) error

	// Delete removes a budget.
	Delete(ctx context.Context, id string) error

	// WatchByUser emits the user's budgets immediately and after every write,
	// until ctx is cancelled (infinite stream).
	WatchByUser(ctx context.Context, userID string) (<-chan []models.Budget, error)
}
