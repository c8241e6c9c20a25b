package models

// Category labels transactions and budgets with a flow direction.
type Category struct {
	Id   string
	Name string
	Type TransactionType

	// IsSystem marks categories owned by the system; they are immutable by
	// non-admin actors and never hard-deleted through the ordinary path.
	IsSystem bool

	// CreatedBy is the creator's user id; empty means system/default.
	CreatedBy string

	// IsDefault marks categories seeded on first run.
	IsDefault bool
}

// Document returns the remote replication payload.
func (c *Category) Document() map[string]any {
	return map[string]any{
		"id":        c.Id,
		"name":      c.Name,
		"type":      string(c.Type),
		"isSystem":  c.IsSystem,
		"createdBy": c.CreatedBy,
		"isDefault": c.IsDefault,
	}
}
