package models

import "time"

// TemplateCategory groups financial advice templates by topic.
type TemplateCategory string

const (
	TemplateCategorySavingTips     TemplateCategory = "SAVING_TIPS"
	TemplateCategoryInvestment     TemplateCategory = "INVESTMENT"
	TemplateCategoryBudgeting      TemplateCategory = "BUDGETING"
	TemplateCategoryDebtManagement TemplateCategory = "DEBT_MANAGEMENT"
	TemplateCategoryGeneral        TemplateCategory = "GENERAL"
)

// FinancialTemplate is a shareable piece of financial advice. Views and
// Likes are popularity counters; Views is the only counter mutated through
// the engine and is mirrored remotely as a partial update.
type FinancialTemplate struct {
	Id      string
	Title   string
	Content string

	Category TemplateCategory

	// CreatedBy is the author's user id; empty means a system template.
	CreatedBy string

	CreatedAt time.Time

	// IsActive hides retired templates from the default listings without
	// deleting them.
	IsActive bool

	Views int
	Likes int
}

// Document returns the remote replication payload.
func (t *FinancialTemplate) Document() map[string]any {
	return map[string]any{
		"id":        t.Id,
		"title":     t.Title,
		"content":   t.Content,
		"category":  string(t.Category),
		"createdBy": t.CreatedBy,
		"createdAt": t.CreatedAt.UnixMilli(),
		"isActive":  t.IsActive,
		"views":     t.Views,
		"likes":     t.Likes,
	}
}
