package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/finanse/internal/common"
	"github.com/dmitrijs2005/finanse/internal/local/categories"
	"github.com/dmitrijs2005/finanse/internal/local/transactions"
	"github.com/dmitrijs2005/finanse/internal/local/users"
	"github.com/dmitrijs2005/finanse/internal/logging"
)

// Fallback labels for the popular-category field.
const (
	// NoPopularCategory is reported when no transaction carries a category.
	NoPopularCategory = "no data"

	// UnknownCategory is reported when the winning category id no longer
	// resolves to a stored category.
	UnknownCategory = "unknown"
)

// Snapshot is one aggregation pass over the local store.
//
// The pass runs over plain one-shot reads, not inside a transaction, so
// writes landing mid-pass can skew individual fields slightly. That is
// accepted: the numbers are advisory, and the next pass self-corrects.
type Snapshot struct {
	TotalUsers                 int
	ActiveUsers                int
	TransactionsThisWeek       int
	UsersWithMoreThanFiveTx    int
	MostPopularCategory        string
	AverageTransactionsPerUser float64
	GeneratedAt                time.Time
}

// StatsService computes aggregate statistics across all users.
type StatsService struct {
	usersRepo users.Repository
	txRepo    transactions.Repository
	catRepo   categories.Repository
	log       logging.Logger
}

func NewStatsService(usersRepo users.Repository, txRepo transactions.Repository, catRepo categories.Repository, log logging.Logger) *StatsService {
	return &StatsService{usersRepo: usersRepo, txRepo: txRepo, catRepo: catRepo, log: log}
}

// Collect runs one aggregation pass. Only the initial user-set read is
// fatal; a failure reading one user's transactions skips that user and the
// pass continues, so a single corrupt record cannot take the whole snapshot
// down.
func (s *StatsService) Collect(ctx context.Context, now time.Time) (*Snapshot, error) {
	allUsers, err := s.usersRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)

	snap := &Snapshot{GeneratedAt: now}
	snap.TotalUsers = len(allUsers)

	categoryCounts := make(map[string]int)
	totalTx := 0

	for i := range allUsers {
		u := &allUsers[i]

		list, err := s.txRepo.GetAllByUser(ctx, u.Id)
		if err != nil {
			s.log.Warn(ctx, "stats: skipping user", "user_id", u.Id, "error", err)
			continue
		}

		totalTx += len(list)
		if len(list) > 0 {
			snap.ActiveUsers++
		}
		if len(list) > 5 {
			snap.UsersWithMoreThanFiveTx++
		}

		for j := range list {
			t := &list[j]
			if !t.Date.Before(weekAgo) {
				snap.TransactionsThisWeek++
			}
			if t.CategoryId != "" {
				categoryCounts[t.CategoryId]++
			}
		}
	}

	if snap.TotalUsers > 0 {
		snap.AverageTransactionsPerUser = float64(totalTx) / float64(snap.TotalUsers)
	}

	snap.MostPopularCategory = s.popularCategoryName(ctx, categoryCounts)
	return snap, nil
}

// popularCategoryName picks the most used category id, ties broken by
// lexicographically smaller id, and resolves it to a name.
func (s *StatsService) popularCategoryName(ctx context.Context, counts map[string]int) string {
	if len(counts) == 0 {
		return NoPopularCategory
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})

	winner := ids[0]
	c, err := s.catRepo.GetByID(ctx, winner)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Warn(ctx, "stats: failed to resolve category", "category_id", winner, "error", err)
		}
		return UnknownCategory
	}
	return c.Name
}
