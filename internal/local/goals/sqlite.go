package goals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/finanse/internal/common"
	"github.com/dmitrijs2005/finanse/internal/dbx"
	"github.com/dmitrijs2005/finanse/internal/local/notify"
	"github.com/dmitrijs2005/finanse/internal/models"
)

// SQLiteRepository implements Repository using a DBTX and a notify.Hub.
type SQLiteRepository struct {
	db  dbx.DBTX
	hub *notify.Hub
}

func NewSQLiteRepository(db dbx.DBTX, hub *notify.Hub) *SQLiteRepository {
	return &SQLiteRepository{db: db, hub: hub}
}

const selectColumns = `id, user_id, name, target_amount, current_amount, deadline, created_at, is_completed, description`

func scanGoal(scan func(dest ...any) error) (models.FinancialGoal, error) {
	var g models.FinancialGoal
	var deadline, createdAt int64
	var completed int

	err := scan(&g.Id, &g.UserId, &g.Name, &g.TargetAmount, &g.CurrentAmount,
		&deadline, &createdAt, &completed, &g.Description)
	if err != nil {
		return g, err
	}

	g.Deadline = time.UnixMilli(deadline).UTC()
	g.CreatedAt = time.UnixMilli(createdAt).UTC()
	g.IsCompleted = completed != 0
	return g, nil
}

func (r *SQLiteRepository) queryList(ctx context.Context, query string, args ...any) ([]models.FinancialGoal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select goals: %w", err)
	}
	defer rows.Close()

	var result []models.FinancialGoal
	for rows.Next() {
		g, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.FinancialGoal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM financial_goals WHERE id=?`, id)
	g, err := scanGoal(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return &g, nil
}

func (r *SQLiteRepository) GetAllByUser(ctx context.Context, userID string) ([]models.FinancialGoal, error) {
	return r.queryList(ctx,
		`SELECT `+selectColumns+` FROM financial_goals WHERE user_id=? ORDER BY deadline ASC`, userID)
}

func (r *SQLiteRepository) GetActiveByUser(ctx context.Context, userID string) ([]models.FinancialGoal, error) {
	return r.queryList(ctx,
		`SELECT `+selectColumns+` FROM financial_goals WHERE user_id=? AND is_completed=0 ORDER BY deadline ASC`, userID)
}

func (r *SQLiteRepository) Insert(ctx context.Context, g *models.FinancialGoal) error {
	query := `INSERT INTO financial_goals (id, user_id, name, target_amount, current_amount, deadline, created_at, is_completed, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
				name = excluded.name,
				target_amount = excluded.target_amount,
				current_amount = excluded.current_amount,
				deadline = excluded.deadline,
				is_completed = excluded.is_completed,
				description = excluded.description
	`
	_, err := r.db.ExecContext(ctx, query,
		g.Id, g.UserId, g.Name, g.TargetAmount, g.CurrentAmount,
		g.Deadline.UnixMilli(), g.CreatedAt.UnixMilli(), boolToInt(g.IsCompleted), g.Description)
	if err != nil {
		return fmt.Errorf("failed to upsert goal: %w", err)
	}
	r.hub.Broadcast(Topic)
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, g *models.FinancialGoal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE financial_goals SET user_id=?, name=?, target_amount=?, current_amount=?, deadline=?, is_completed=?, description=? WHERE id=?`,
		g.UserId, g.Name, g.TargetAmount, g.CurrentAmount,
		g.Deadline.UnixMilli(), boolToInt(g.IsCompleted), g.Description, g.Id)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	r.hub.Broadcast(Topic)
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM financial_goals WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	r.hub.Broadcast(Topic)
	return nil
}

// WatchByUser re-queries the user's goals after each change signal.
func (r *SQLiteRepository) WatchByUser(ctx context.Context, userID string) (<-chan []models.FinancialGoal, error) {
	initial, err := r.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	signals := r.hub.Subscribe(ctx, Topic)
	out := make(chan []models.FinancialGoal, 1)
	out <- initial

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				snapshot, err := r.GetAllByUser(ctx, userID)
				if err != nil {
					continue
				}
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
