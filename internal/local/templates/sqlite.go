package templates

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

const selectColumns = `id, title, content, category, created_by, created_at, is_active, views, likes`

func scanTemplate(scan func(dest ...any) error) (models.FinancialTemplate, error) {
	var t models.FinancialTemplate
	var createdBy sql.NullString
	var createdAt int64
	var active int

	err := scan(&t.Id, &t.Title, &t.Content, (*string)(&t.Category),
		&createdBy, &createdAt, &active, &t.Views, &t.Likes)
	if err != nil {
		return t, err
	}

	t.CreatedBy = createdBy.String
	t.CreatedAt = time.UnixMilli(createdAt).UTC()
	t.IsActive = active != 0
	return t, nil
}

func (r *SQLiteRepository) queryList(ctx context.Context, query string, args ...any) ([]models.FinancialTemplate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select templates: %w", err)
	}
	defer rows.Close()

	var result []models.FinancialTemplate
	for rows.Next() {
		t, err := scanTemplate(rows.Scan)
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

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.FinancialTemplate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM financial_templates WHERE id=?`, id)
	t, err := scanTemplate(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &t, nil
}

func (r *SQLiteRepository) GetAllActive(ctx context.Context) ([]models.FinancialTemplate, error) {
	return r.queryList(ctx,
		`SELECT `+selectColumns+` FROM financial_templates WHERE is_active=1 ORDER BY created_at DESC`)
}

func (r *SQLiteRepository) GetAllByCategory(ctx context.Context, tc models.TemplateCategory) ([]models.FinancialTemplate, error) {
	return r.queryList(ctx,
		`SELECT `+selectColumns+` FROM financial_templates WHERE category=? AND is_active=1 ORDER BY created_at DESC`,
		string(tc))
}

func (r *SQLiteRepository) GetPopular(ctx context.Context, limit int) ([]models.FinancialTemplate, error) {
	return r.queryList(ctx,
		`SELECT `+selectColumns+` FROM financial_templates ORDER BY views DESC LIMIT ?`, limit)
}

func (r *SQLiteRepository) Insert(ctx context.Context, t *models.FinancialTemplate) error {
	query := `INSERT INTO financial_templates (id, title, content, category, created_by, created_at, is_active, views, likes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET title = excluded.title,
				content = excluded.content,
				category = excluded.category,
				created_by = excluded.created_by,
				is_active = excluded.is_active,
				views = excluded.views,
				likes = excluded.likes
	`
	_, err := r.db.ExecContext(ctx, query,
		t.Id, t.Title, t.Content, string(t.Category), nullIfEmpty(t.CreatedBy),
		t.CreatedAt.UnixMilli(), boolToInt(t.IsActive), t.Views, t.Likes)
	if err != nil {
		return fmt.Errorf("failed to upsert template: %w", err)
	}
	r.hub.Broadcast(Topic)
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, t *models.FinancialTemplate) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE financial_templates SET title=?, content=?, category=?, created_by=?, is_active=?, views=?, likes=? WHERE id=?`,
		t.Title, t.Content, string(t.Category), nullIfEmpty(t.CreatedBy),
		boolToInt(t.IsActive), t.Views, t.Likes, t.Id)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
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

func (r *SQLiteRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE financial_templates SET views = views + 1 WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment template views: %w", err)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM financial_templates WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
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

// WatchActive re-queries the active templates after each change signal.
func (r *SQLiteRepository) WatchActive(ctx context.Context) (<-chan []models.FinancialTemplate, error) {
	initial, err := r.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}

	signals := r.hub.Subscribe(ctx, Topic)
	out := make(chan []models.FinancialTemplate, 1)
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
				snapshot, err := r.GetAllActive(ctx)
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
