package users

import (
	"context"

	"github.com/dmitrijs2005/finanse/internal/models"
)

// Topic is the change-hub topic signalled after every write.
const Topic = "users"

// Repository describes CRUD operations for users in the local store.
// The pin_hash and biometric_enabled columns are local-only; they never
// appear in the remote replication payload (see models.User.Document).
type Repository interface {
	// GetByID returns one user (one-shot read).
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetAll returns every user (one-shot).
	GetAll(ctx context.Context) ([]models.User, error)

	// Insert upserts a user by id.
	Insert(ctx context.Context, u *models.User) error

	// Update rewrites an existing user, including the local-only fields.
	Update(ctx context.Context, u *models.User) error

	// Delete removes a user. No cascade: the user's financial records stay.
	Delete(ctx context.Context, id string) error

	// WatchAll emits the full user list immediately and after every write,
	// until ctx is cancelled (infinite stream).
	WatchAll(ctx context.Context) (<-chan []models.User, error)
}
