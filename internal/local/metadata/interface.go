package metadata

import "context"

// Well-known keys stored in the local metadata table. Values under these keys
// never leave the device.
const (
	KeySessionToken = "session_token"
	KeyLastSweepAt  = "last_sweep_at"
)

// Repository is a small local-only key/value store for device state that has
// no remote counterpart (session token, sweep bookkeeping).
type Repository interface {
	// Get returns the value for key, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key; removing an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key.
	Clear(ctx context.Context) error
}
