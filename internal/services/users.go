package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/finanse/internal/auth"
	"github.com/dmitrijs2005/finanse/internal/common"
	"github.com/dmitrijs2005/finanse/internal/local/users"
	"github.com/dmitrijs2005/finanse/internal/logging"
	"github.com/dmitrijs2005/finanse/internal/models"
	"github.com/dmitrijs2005/finanse/internal/remote"
)

// UserService coordinates user-account mutations. Administrative operations
// (block, unblock, delete) require an admin principal. The device PIN and
// biometric preference are local-only and never propagated.
type UserService struct {
	repo  users.Repository
	store remote.Store
	log   logging.Logger
}

func NewUserService(repo users.Repository, store remote.Store, log logging.Logger) *UserService {
	return &UserService{repo: repo, store: store, log: log}
}

// Save upserts a user locally, then mirrors the public fields remotely.
func (s *UserService) Save(ctx context.Context, u *models.User) (Outcome, error) {
	if u.Id == "" {
		u.Id = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = models.UserRoleUser
	}

	if err := s.repo.Insert(ctx, u); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to save user: %w", err)
	}

	if err := s.store.Set(ctx, remote.CollectionUsers, u.Id, u.Document()); err != nil {
		s.log.Warn(ctx, "remote propagation deferred", "user_id", u.Id, "error", err)
		return OutcomeDeferred, nil
	}
	return OutcomePropagated, nil
}

// SetBlocked flips a user's blocked state. The remote side receives only a
// partial update of the isBlocked field, so an unrelated stale remote copy
// is not overwritten wholesale.
func (s *UserService) SetBlocked(ctx context.Context, p auth.Principal, userID string, blocked bool) (Outcome, error) {
	if !p.IsAdmin() {
		return OutcomeDeferred, common.ErrUnauthorized
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return OutcomeDeferred, err
	}

	u.IsBlocked = blocked
	if err := s.repo.Update(ctx, u); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to update user: %w", err)
	}

	if err := s.store.Update(ctx, remote.CollectionUsers, userID, map[string]any{"isBlocked": blocked}); err != nil {
		s.log.Warn(ctx, "remote block update deferred", "user_id", userID, "error", err)
		return OutcomeDeferred, nil
	}
	return OutcomePropagated, nil
}

// Delete removes a user account. The user's financial records stay in both
// stores; only the account document is removed.
func (s *UserService) Delete(ctx context.Context, p auth.Principal, userID string) (Outcome, error) {
	if !p.IsAdmin() {
		return OutcomeDeferred, common.ErrUnauthorized
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return OutcomeDeferred, fmt.Errorf("failed to delete user: %w", err)
	}

	if err := s.store.Delete(ctx, remote.CollectionUsers, userID); err != nil {
		s.log.Warn(ctx, "remote delete deferred", "user_id", userID, "error", err)
		return OutcomeDeferred, nil
	}
	return OutcomePropagated, nil
}

// SetPin hashes and stores the device PIN in the local store only.
func (s *UserService) SetPin(ctx context.Context, userID, pin string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := auth.HashPin(pin)
	if err != nil {
		return err
	}

	u.PinHash = hash
	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to store pin: %w", err)
	}
	return nil
}

// VerifyPin checks the device PIN against the stored hash.
func (s *UserService) VerifyPin(ctx context.Context, userID, pin string) (bool, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(u.PinHash) == 0 {
		return false, nil
	}
	return auth.VerifyPin(u.PinHash, pin), nil
}

// SetBiometric flips the local-only biometric preference.
func (s *UserService) SetBiometric(ctx context.Context, userID string, enabled bool) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	u.BiometricEnabled = enabled
	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to update biometric preference: %w", err)
	}
	return nil
}
