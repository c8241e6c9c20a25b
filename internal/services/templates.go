package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/finanse/internal/auth"
	"github.com/dmitrijs2005/finanse/internal/common"
	"github.com/dmitrijs2005/finanse/internal/local/templates"
	"github.com/dmitrijs2005/finanse/internal/logging"
	"github.com/dmitrijs2005/finanse/internal/models"
	"github.com/dmitrijs2005/finanse/internal/remote"
)

// PopularTemplateLimit caps the popular-template listing.
const PopularTemplateLimit = 10

// TemplateService coordinates financial template mutations. System templates
// (no author) may only be created by admins.
type TemplateService struct {
	repo  templates.Repository
	store remote.Store
	log   logging.Logger
}

func NewTemplateService(repo templates.Repository, store remote.Store, log logging.Logger) *TemplateService {
	return &TemplateService{repo: repo, store: store, log: log}
}

// Create inserts a template owned by the principal. Admins may leave
// CreatedBy empty to publish a system template.
func (s *TemplateService) Create(ctx context.Context, p auth.Principal, t *models.FinancialTemplate) (Outcome, error) {
	if t.Id == "" {
		t.Id = uuid.NewString()
	}
	if !p.IsAdmin() {
		t.CreatedBy = p.UserID
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.IsActive = true

	if err := s.repo.Insert(ctx, t); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to create template: %w", err)
	}

	return s.propagate(ctx, t), nil
}

// Update rewrites a template. Only the author or an admin may change it.
func (s *TemplateService) Update(ctx context.Context, p auth.Principal, t *models.FinancialTemplate) (Outcome, error) {
	current, err := s.repo.GetByID(ctx, t.Id)
	if err != nil {
		return OutcomeDeferred, err
	}
	if current.CreatedBy != p.UserID && !p.IsAdmin() {
		return OutcomeDeferred, common.ErrUnauthorized
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to update template: %w", err)
	}

	return s.propagate(ctx, t), nil
}

// Delete removes a template locally, then best-effort remotely.
func (s *TemplateService) Delete(ctx context.Context, p auth.Principal, id string) (Outcome, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return OutcomeDeferred, err
	}
	if current.CreatedBy != p.UserID && !p.IsAdmin() {
		return OutcomeDeferred, common.ErrUnauthorized
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to delete template: %w", err)
	}

	if err := s.store.Delete(ctx, remote.CollectionTemplates, id); err != nil {
		s.log.Warn(ctx, "remote delete deferred", "template_id", id, "error", err)
		return OutcomeDeferred, nil
	}
	return OutcomePropagated, nil
}

// RecordView bumps the local view counter, then mirrors only the counter as
// a partial remote update so concurrent edits to other fields survive. The
// local increment stands even when the remote is unreachable.
func (s *TemplateService) RecordView(ctx context.Context, id string) (Outcome, error) {
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return OutcomeDeferred, err
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return OutcomeDeferred, err
	}

	err = s.store.Update(ctx, remote.CollectionTemplates, id, map[string]any{"views": t.Views})
	if err != nil {
		s.log.Warn(ctx, "remote view update deferred", "template_id", id, "error", err)
		return OutcomeDeferred, nil
	}
	return OutcomePropagated, nil
}

// GetPopular returns the most viewed templates.
func (s *TemplateService) GetPopular(ctx context.Context) ([]models.FinancialTemplate, error) {
	return s.repo.GetPopular(ctx, PopularTemplateLimit)
}

func (s *TemplateService) propagate(ctx context.Context, t *models.FinancialTemplate) Outcome {
	if err := s.store.Set(ctx, remote.CollectionTemplates, t.Id, t.Document()); err != nil {
		s.log.Warn(ctx, "remote propagation deferred", "template_id", t.Id, "error", err)
		return OutcomeDeferred
	}
	return OutcomePropagated
}
