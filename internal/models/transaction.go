// Package models defines the domain entities persisted in the local store and
// mirrored to the remote document store. Each entity knows how to render its
// remote replication payload; local-only fields are structurally absent from
// those payloads.
package models

import "time"

// TransactionType is the flow direction of money for a transaction or category.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Transaction is a single money movement owned by a user.
type Transaction struct {
	// Id is a globally unique identifier.
	Id string

	// UserId is the owning user.
	UserId string

	// Amount is non-negative by convention; the sign is implied by Type.
	Amount float64

	Type TransactionType

	// CategoryId references a Category. Empty means "no category"; the local
	// store sets it to empty when the referenced category is deleted.
	CategoryId string

	// Date is when the transaction occurred.
	Date time.Time

	Description string

	CreatedAt time.Time

	// Synced is false whenever the last local write has not been confirmed
	// mirrored to the remote store. It is flipped true only after a
	// successful remote write.
	Synced bool
}

// Document returns the remote replication payload. Synced is local
// bookkeeping and is not replicated.
func (t *Transaction) Document() map[string]any {
	return map[string]any{
		"id":          t.Id,
		"userId":      t.UserId,
		"amount":      t.Amount,
		"type":        string(t.Type),
		"categoryId":  t.CategoryId,
		"date":        t.Date.UnixMilli(),
		"description": t.Description,
		"createdAt":   t.CreatedAt.UnixMilli(),
	}
}
