package transactions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/finanse/internal/models"
)

// Topic is the change-hub topic signalled after every write.
const Topic = "transactions"

// Repository describes CRUD and query operations for transactions in the
// local store. The local store is the authoritative read path; the synced
// column tracks whether the last local write reached the remote store.
type Repository interface {
	// GetByID returns one transaction (one-shot read).
	GetByID(ctx context.Context, id string) (*models.Transaction, error)

	// GetAllByUser returns the user's transactions, newest first (one-shot).
	GetAllByUser(ctx context.Context, userID string) ([]models.Transaction, error)

	// GetAllByUserAndType filters by flow direction, newest first.
	GetAllByUserAndType(ctx context.Context, userID string, tt models.TransactionType) ([]models.Transaction, error)

	// GetAllByDateRange returns transactions with start <= date <= end.
	GetAllByDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.Transaction, error)

	// TotalByTypeAndDateRange sums amounts for a type inside a date range.
	// Returns 0 when nothing matches.
	TotalByTypeAndDateRange(ctx context.Context, userID string, tt models.TransactionType, start, end time.Time) (float64, error)

	// GetAllUnsynced returns every transaction whose last local write has not
	// been confirmed mirrored remotely (one-shot).
	GetAllUnsynced(ctx context.Context) ([]models.Transaction, error)

	// Insert upserts a transaction by id.
	Insert(ctx context.Context, t *models.Transaction) error

	// Update rewrites an existing transaction, including its synced flag.
	Update(ctx context.Context, t *models.Transaction) error

	// SetSynced durably flips the propagation flag for one transaction.
	SetSynced(ctx context.Context, id string, synced bool) error

	// Delete removes a transaction. Deletion is destructive; there is no
	// tombstone.
	Delete(ctx context.Context, id string) error

	// WatchByUser emits the user's current transaction list immediately and
	// then again after every write, until ctx is cancelled (infinite stream).
	WatchByUser(ctx context.Context, userID string) (<-chan []models.Transaction, error)
}
