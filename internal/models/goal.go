package models

import "time"

// FinancialGoal is a savings target. IsCompleted is derived from the amounts
// but persisted for query efficiency; it must be recomputed and stored every
// time CurrentAmount changes.
type FinancialGoal struct {
	Id     string
	UserId string
	Name   string

	TargetAmount float64

	// CurrentAmount is monotonically non-decreasing under normal use.
	CurrentAmount float64

	Deadline  time.Time
	CreatedAt time.Time

	// IsCompleted is true once CurrentAmount >= TargetAmount.
	IsCompleted bool

	Description string
}

// Document returns the remote replication payload.
func (g *FinancialGoal) Document() map[string]any {
	return map[string]any{
		"id":            g.Id,
		"userId":        g.UserId,
		"name":          g.Name,
		"targetAmount":  g.TargetAmount,
		"currentAmount": g.CurrentAmount,
		"deadline":      g.Deadline.UnixMilli(),
		"createdAt":     g.CreatedAt.UnixMilli(),
		"isCompleted":   g.IsCompleted,
		"description":   g.Description,
	}
}
