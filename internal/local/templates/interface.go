package templates

import (
	"context"

	"github.com/dmitrijs2005/finanse/internal/models"
)

// Topic is the change-hub topic signalled after every write.
const Topic = "templates"

// Repository describes CRUD and query operations for financial templates in
// the local store.
type Repository interface {
	// GetByID returns one template (one-shot read).
	GetByID(ctx context.Context, id string) (*models.FinancialTemplate, error)

	// GetAllActive returns active templates, newest first (one-shot).
	GetAllActive(ctx context.Context) ([]models.FinancialTemplate, error)

	// GetAllByCategory returns active templates for one category, newest
	// first.
	GetAllByCategory(ctx context.Context, tc models.TemplateCategory) ([]models.FinancialTemplate, error)

	// GetPopular returns the most viewed templates, active or not.
	GetPopular(ctx context.Context, limit int) ([]models.FinancialTemplate, error)

	// Insert upserts a template by id.
	Insert(ctx context.Context, t *models.FinancialTemplate) error

	// Update rewrites an existing template.
	Update(ctx context.Context, t *models.FinancialTemplate) error

	// IncrementViews bumps the view counter by one in a single statement.
	IncrementViews(ctx context.Context, id string) error

	// Delete removes a template.
	Delete(ctx context.Context, id string) error

	// WatchActive emits the active template list immediately and after every
	// write, until ctx is cancelled (infinite stream).
	WatchActive(ctx context.Context) (<-chan []models.FinancialTemplate, error)
}
