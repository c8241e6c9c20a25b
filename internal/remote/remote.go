// Package remote defines the client contract for the remote document store
// that mirrors local mutations, plus S3-compatible, Postgres and in-memory
// implementations.
//
// The engine only ever writes through this interface; it never reads the
// remote store back, so the local database stays the single authoritative
// read path and split-brain reads cannot happen.
package remote

import "context"

// Collection names mirrored to the remote store.
const (
	CollectionUsers        = "users"
	CollectionCategories   = "categories"
	CollectionTransactions = "transactions"
	CollectionBudgets      = "budgets"
	CollectionGoals        = "financial_goals"
	CollectionTemplates    = "financial_templates"
)

// Store is a keyed document store. Set must behave as an idempotent
// full-document replacement so that retrying a propagation is always safe
// (last write wins by key). Update patches only the named fields of an
// existing document. Delete removes the document; deleting an absent
// document is not an error.
type Store interface {
	Set(ctx context.Context, collection, key string, doc map[string]any) error
	Update(ctx context.Context, collection, key string, fields map[string]any) error
	Delete(ctx context.Context, collection, key string) error
}

// Nop is the Store used when replication is disabled: every call succeeds
// and nothing is stored anywhere.
type Nop struct{}

func (Nop) Set(context.Context, string, string, map[string]any) error    { return nil }
func (Nop) Update(context.Context, string, string, map[string]any) error { return nil }
func (Nop) Delete(context.Context, string, string) error                 { return nil }
