package categories

import (
	"context"

	"github.com/dmitrijs2005/finanse/internal/models"
)

// Topic is the change-hub topic signalled after every write.
const Topic = "categories"

// Repository describes CRUD and query operations for categories in the local
// store. Deleting a category never orphans dependents: the schema sets
// referencing transactions and budgets to "no category".
type Repository interface {
	// GetByID returns one category (one-shot read).
	GetByID(ctx context.Context, id string) (*models.Category, error)

	// GetAll returns every category, system ones first, then by name.
	GetAll(ctx context.Context) ([]models.Category, error)

	// GetAllByType filters by flow direction, system ones first.
	GetAllByType(ctx context.Context, tt models.TransactionType) ([]models.Category, error)

	// GetSystem returns only system-owned categories.
	GetSystem(ctx context.Context) ([]models.Category, error)

	// Insert upserts a category by id.
	Insert(ctx context.Context, c *models.Category) error

	// InsertBatch upserts several categories in one statement sequence.
	InsertBatch(ctx context.Context, cs []models.Category) error

	// Update rewrites an existing category.
	Update(ctx context.Context, c *models.Category) error

	// Delete removes a category; dependents fall back to "no category".
	Delete(ctx context.Context, id string) error

	// WatchAll emits the full category list immediately and then after every
	// write, until ctx is cancelled (infinite stream).
	WatchAll(ctx context.Context) (<-chan []models.Category, error)
}
