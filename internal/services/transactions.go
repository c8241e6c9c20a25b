package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/finanse/internal/auth"
	"github.com/dmitrijs2005/finanse/internal/local/transactions"
	"github.com/dmitrijs2005/finanse/internal/logging"
	"github.com/dmitrijs2005/finanse/internal/models"
	"github.com/dmitrijs2005/finanse/internal/remote"
)

// TransactionService coordinates transaction mutations between the local
// store and the remote mirror.
type TransactionService struct {
	repo  transactions.Repository
	store remote.Store
	log   logging.Logger
}

func NewTransactionService(repo transactions.Repository, store remote.Store, log logging.Logger) *TransactionService {
	return &TransactionService{repo: repo, store: store, log: log}
}

// Create inserts a new transaction for the acting principal. The local
// insert commits with Synced=false; propagation to the remote store is then
// attempted once.
func (s *TransactionService) Create(ctx context.Context, p auth.Principal, t *models.Transaction) (Outcome, error) {
	if t.Id == "" {
		t.Id = uuid.NewString()
	}
	t.UserId = p.UserID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.Synced = false

	if err := s.repo.Insert(ctx, t); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to create transaction: %w", err)
	}

	return s.propagate(ctx, t), nil
}

// Update rewrites an existing transaction. The synced flag is dropped to
// false in the same local write, before any remote attempt, so a crash
// between the two steps still leaves the record visible to the sweep.
func (s *TransactionService) Update(ctx context.Context, t *models.Transaction) (Outcome, error) {
	t.Synced = false

	if err := s.repo.Update(ctx, t); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to update transaction: %w", err)
	}

	return s.propagate(ctx, t), nil
}

// Delete removes the transaction locally, then fires a best-effort remote
// delete. There is no tombstone: if the remote delete fails, the remote copy
// lingers until overwritten or removed out of band.
func (s *TransactionService) Delete(ctx context.Context, id string) (Outcome, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to delete transaction: %w", err)
	}

	if err := s.store.Delete(ctx, remote.CollectionTransactions, id); err != nil {
		s.log.Warn(ctx, "remote delete deferred", "transaction_id", id, "error", err)
		return OutcomeDeferred, nil
	}
	return OutcomePropagated, nil
}

// GetAllByUser returns the user's transactions from the local store.
func (s *TransactionService) GetAllByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.repo.GetAllByUser(ctx, userID)
}

// propagate pushes one transaction to the remote mirror and, on success,
// durably flips its synced flag. Failures are logged and swallowed.
func (s *TransactionService) propagate(ctx context.Context, t *models.Transaction) Outcome {
	if err := s.store.Set(ctx, remote.CollectionTransactions, t.Id, t.Document()); err != nil {
		s.log.Warn(ctx, "remote propagation deferred", "transaction_id", t.Id, "error", err)
		return OutcomeDeferred
	}

	if err := s.repo.SetSynced(ctx, t.Id, true); err != nil {
		// Remote has the document; the local flag will be corrected by the
		// next sweep re-sending the same document (Set is idempotent).
		s.log.Warn(ctx, "failed to mark transaction synced", "transaction_id", t.Id, "error", err)
		return OutcomeDeferred
	}

	t.Synced = true
	return OutcomePropagated
}
