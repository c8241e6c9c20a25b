package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/finanse/internal/local/metadata"
	"github.com/dmitrijs2005/finanse/internal/local/transactions"
	"github.com/dmitrijs2005/finanse/internal/logging"
	"github.com/dmitrijs2005/finanse/internal/remote"
)

// SweepResult summarizes one reconciliation pass.
type SweepResult struct {
	// Propagated is the number of records confirmed mirrored this pass.
	Propagated int

	// Deferred is the number of records that still failed and remain
	// unsynced for a later pass.
	Deferred int
}

// Sweeper retries unsynced transactions against the remote store.
//
// Concurrent callers collapse onto a single running sweep via singleflight;
// everyone gets that sweep's result. Records are processed sequentially and
// failures are isolated per record: one bad record never aborts the pass.
type Sweeper struct {
	repo  transactions.Repository
	meta  metadata.Repository
	store remote.Store
	log   logging.Logger

	group singleflight.Group

	// RetryAttempts and RetryDelay bound the per-record retry loop.
	RetryAttempts uint64
	RetryDelay    time.Duration
}

func NewSweeper(repo transactions.Repository, meta metadata.Repository, store remote.Store, log logging.Logger) *Sweeper {
	return &Sweeper{
		repo:          repo,
		meta:          meta,
		store:         store,
		log:           log,
		RetryAttempts: 3,
		RetryDelay:    200 * time.Millisecond,
	}
}

// Sweep runs one reconciliation pass and returns its result. Re-sending an
// already-mirrored record is harmless (full-document overwrite by key), so
// a sweep can always be retried from scratch.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	v, err, _ := s.group.Do("sweep", func() (any, error) {
		return s.sweep(ctx)
	})
	if err != nil {
		return SweepResult{}, err
	}
	return v.(SweepResult), nil
}

func (s *Sweeper) sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	pending, err := s.repo.GetAllUnsynced(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list unsynced transactions: %w", err)
	}

	for i := range pending {
		t := &pending[i]

		backoff := retry.WithMaxRetries(s.RetryAttempts, retry.NewConstant(s.RetryDelay))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := s.store.Set(ctx, remote.CollectionTransactions, t.Id, t.Document()); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			s.log.Warn(ctx, "sweep: record still deferred", "transaction_id", t.Id, "error", err)
			result.Deferred++
			continue
		}

		if err := s.repo.SetSynced(ctx, t.Id, true); err != nil {
			s.log.Warn(ctx, "sweep: failed to mark record synced", "transaction_id", t.Id, "error", err)
			result.Deferred++
			continue
		}
		result.Propagated++
	}

	now := time.Now().UTC()
	if err := s.meta.Set(ctx, metadata.KeyLastSweepAt, []byte(strconv.FormatInt(now.UnixMilli(), 10))); err != nil {
		s.log.Warn(ctx, "sweep: failed to record completion time", "error", err)
	}

	s.log.Info(ctx, "sweep finished", "propagated", result.Propagated, "deferred", result.Deferred)
	return result, nil
}
