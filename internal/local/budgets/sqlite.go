package budgets

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

const selectColumns = `id, user_id, category_id, amount, period, start_date, created_at`

func scanBudget(scan func(dest ...any) error) (models.Budget, error) {
	var b models.Budget
	var categoryID sql.NullString
	var startDate, createdAt int64

	err := scan(&b.Id, &b.UserId, &categoryID, &b.Amount, (*string)(&b.Period), &startDate, &createdAt)
	if err != nil {
		return b, err
	}

	b.CategoryId = categoryID.String
	b.StartDate = time.UnixMilli(startDate).UTC()
	b.CreatedAt = time.UnixMilli(createdAt).UTC()
	return b, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Budget, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM budgets WHERE id=?`, id)
	b, err := scanBudget(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return &b, nil
}

func (r *SQLiteRepository) GetAllByUser(ctx context.Context, userID string) ([]models.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM budgets WHERE user_id=? ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select budgets: %w", err)
	}
	defer rows.Close()

	var result []models.Budget
	for rows.Next() {
		b, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByCategory(ctx context.Context, userID, categoryID string) (*models.Budget, error) {
	query := `SELECT ` + selectColumns + ` FROM budgets WHERE user_id=? AND category_id=?`
	args := []any{userID, categoryID}
	if categoryID == "" {
		query = `SELECT ` + selectColumns + ` FROM budgets WHERE user_id=? AND category_id IS NULL`
		args = []any{userID}
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	b, err := scanBudget(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get budget by category: %w", err)
	}
	return &b, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, b *models.Budget) error {
	query := `INSERT INTO budgets (id, user_id, category_id, amount, period, start_date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
				category_id = excluded.category_id,
				amount = excluded.amount,
				period = excluded.period,
				start_date = excluded.start_date
	`
	_, err := r.db.ExecContext(ctx, query,
		b.Id, b.UserId, nullIfEmpty(b.CategoryId), b.Amount, string(b.Period),
		b.StartDate.UnixMilli(), b.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert budget: %w", err)
	}
	r.hub.Broadcast(Topic)
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, b *models.Budget) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET user_id=?, category_id=?, amount=?, period=?, start_date=? WHERE id=?`,
		b.UserId, nullIfEmpty(b.CategoryId), b.Amount, string(b.Period), b.StartDate.UnixMilli(), b.Id)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
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

// WatchByUser re-queries the user's budgets after each change signal.
func (r *SQLiteRepository) WatchByUser(ctx context.Context, userID string) (<-chan []models.Budget, error) {
	initial, err := r.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	signals := r.hub.Subscribe(ctx, Topic)
	out := make(chan []models.Budget, 1)
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

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
