package models

import "time"

// BudgetPeriod is the recurrence of a budget.
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "WEEKLY"
	BudgetPeriodMonthly BudgetPeriod = "MONTHLY"
)

// Budget is a spending limit for one category or the whole wallet.
type Budget struct {
	Id     string
	UserId string

	// CategoryId references a Category. Empty means a whole-wallet budget;
	// the local store also sets it to empty when the category is deleted.
	CategoryId string

	// Amount is the limit for the period.
	Amount float64

	Period    BudgetPeriod
	StartDate time.Time
	CreatedAt time.Time
}

// Document returns the remote replication payload.
func (b *Budget) Document() map[string]any {
	return map[string]any{
		"id":         b.Id,
		"userId":     b.UserId,
		"categoryId": b.CategoryId,
		"amount":     b.Amount,
		"period":     string(b.Period),
		"startDate":  b.StartDate.UnixMilli(),
		"createdAt":  b.CreatedAt.UnixMilli(),
	}
}
