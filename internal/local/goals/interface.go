package goals

import (
	"context"

	"github.com/dmitrijs2005/finanse/internal/models"
)

// Topic is the change-hub topic signalled after every write.
const Topic = "goals"

// Repository describes CRUD operations for financial goals in the local
// store. Implementations bound to a transaction (via dbx.DBTX) are used for
// the read-modify-write progress update.
type Repository interface {
	// GetByID returns one goal (one-shot read).
	GetByID(ctx context.Context, id string) (*models.FinancialGoal, error)

	// GetAllByUser returns the user's goals (one-shot).
	GetAllByUser(ctx context.Context, userID string) ([]models.FinancialGoal, error)

	// GetActiveByUser returns the user's goals not yet completed.
	GetActiveByUser(ctx context.Context, userID string) ([]models.FinancialGoal, error)

	// Insert upserts a goal by id.
	Insert(ctx context.Context, g *models.FinancialGoal) error

	// Update rewrites an existing goal; CurrentAmount and IsCompleted are
	// persisted in the same statement.
	Update(ctx context.Context, g *models.FinancialGoal) error

	// Delete removes a goal.
	Delete(ctx context.Context, id string) error

	// WatchByUser emits the user's goals immediately and after every write,
	// until ctx is cancelled (infinite stream).
	WatchByUser(ctx context.Context, userID string) (<-chan []models.FinancialGoal, error)
}
