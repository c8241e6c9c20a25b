package transactions

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

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx) and a notify.Hub for live queries.
type SQLiteRepository struct {
	db  dbx.DBTX
	hub *notify.Hub
}

// NewSQLiteRepository returns a repository bound to the given DBTX and hub.
func NewSQLiteRepository(db dbx.DBTX, hub *notify.Hub) *SQLiteRepository {
	return &SQLiteRepository{db: db, hub: hub}
}

const selectColumns = `id, user_id, amount, type, category_id, date, description, created_at, synced`

func scanTransaction(scan func(dest ...any) error) (models.Transaction, error) {
	var t models.Transaction
	var categoryID sql.NullString
	var date, createdAt int64
	var synced int

	err := scan(&t.Id, &t.UserId, &t.Amount, (*string)(&t.Type), &categoryID, &date, &t.Description, &createdAt, &synced)
	if err != nil {
		return t, err
	}

	t.CategoryId = categoryID.String
	t.Date = time.UnixMilli(date).UTC()
	t.CreatedAt = time.UnixMilli(createdAt).UTC()
	t.Synced = synced != 0
	return t, nil
}

func (r *SQLiteRepository) queryList(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select transactions: %w", err)
	}
	defer rows.Close()

	var result []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM transactions WHERE id=?`, id)
	t, err := scanTransaction(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &t, nil
}

func (r *SQLiteRepository) GetAllByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return r.queryList(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE user_id=? ORDER BY date DESC`, userID)
}

func (r *SQLiteRepository) GetAllByUserAndType(ctx context.Context, userID string, tt models.TransactionType) ([]models.Transaction, error) {
	return r.queryList(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE user_id=? AND type=? ORDER BY date DESC`,
		userID, string(tt))
}

func (r *SQLiteRepository) GetAllByDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.Transaction, error) {
	return r.queryList(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE user_id=? AND date >= ? AND date <= ? ORDER BY date DESC`,
		userID, start.UnixMilli(), end.UnixMilli())
}

func (r *SQLiteRepository) TotalByTypeAndDateRange(ctx context.Context, userID string, tt models.TransactionType, start, end time.Time) (float64, error) {
	var total sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(amount) FROM transactions WHERE user_id=? AND type=? AND date >= ? AND date <= ?`,
		userID, string(tt), start.UnixMilli(), end.UnixMilli()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total.Float64, nil
}

func (r *SQLiteRepository) GetAllUnsynced(ctx context.Context) ([]models.Transaction, error) {
	return r.queryList(ctx, `SELECT `+selectColumns+` FROM transactions WHERE synced=0`)
}

func (r *SQLiteRepository) Insert(ctx context.Context, t *models.Transaction) error {
	query := `INSERT INTO transactions (id, user_id, amount, type, category_id, date, description, created_at, synced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
				amount = excluded.amount,
				type = excluded.type,
				category_id = excluded.category_id,
				date = excluded.date,
				description = excluded.description,
				created_at = excluded.created_at,
				synced = excluded.synced
	`
	_, err := r.db.ExecContext(ctx, query,
		t.Id, t.UserId, t.Amount, string(t.Type), nullIfEmpty(t.CategoryId),
		t.Date.UnixMilli(), t.Description, t.CreatedAt.UnixMilli(), boolToInt(t.Synced))
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	r.hub.Broadcast(Topic)
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, t *models.Transaction) error {
	query := `UPDATE transactions SET user_id=?, amount=?, type=?, category_id=?, date=?, description=?, synced=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, query,
		t.UserId, t.Amount, string(t.Type), nullIfEmpty(t.CategoryId),
		t.Date.UnixMilli(), t.Description, boolToInt(t.Synced), t.Id)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
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

func (r *SQLiteRepository) SetSynced(ctx context.Context, id string, synced bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET synced=? WHERE id=?`, boolToInt(synced), id)
	if err != nil {
		return fmt.Errorf("failed to set synced flag: %w", err)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
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

// WatchByUser re-queries the user's transactions after each change signal.
// A failed re-query is skipped; the stream stays open until ctx is cancelled.
func (r *SQLiteRepository) WatchByUser(ctx context.Context, userID string) (<-chan []models.Transaction, error) {
	initial, err := r.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	signals := r.hub.Subscribe(ctx, Topic)
	out := make(chan []models.Transaction, 1)
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

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
