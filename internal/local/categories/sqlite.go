package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

const selectColumns = `id, name, type, is_system, created_by, is_default`

func scanCategory(scan func(dest ...any) error) (models.Category, error) {
	var c models.Category
	var createdBy sql.NullString
	var isSystem, isDefault int

	err := scan(&c.Id, &c.Name, (*string)(&c.Type), &isSystem, &createdBy, &isDefault)
	if err != nil {
		return c, err
	}

	c.IsSystem = isSystem != 0
	c.CreatedBy = createdBy.String
	c.IsDefault = isDefault != 0
	return c, nil
}

func (r *SQLiteRepository) queryList(ctx context.Context, query string, args ...any) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []models.Category
	for rows.Next() {
		c, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM categories WHERE id=?`, id)
	c, err := scanCategory(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	return r.queryList(ctx, `SELECT `+selectColumns+` FROM categories ORDER BY is_system DESC, name ASC`)
}

func (r *SQLiteRepository) GetAllByType(ctx context.Context, tt models.TransactionType) ([]models.Category, error) {
	return r.queryList(ctx,
		`SELECT `+selectColumns+` FROM categories WHERE type=? ORDER BY is_system DESC, name ASC`, string(tt))
}

func (r *SQLiteRepository) GetSystem(ctx context.Context) ([]models.Category, error) {
	return r.queryList(ctx, `SELECT `+selectColumns+` FROM categories WHERE is_system=1 ORDER BY name ASC`)
}

const upsertQuery = `INSERT INTO categories (id, name, type, is_system, created_by, is_default)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			type = excluded.type,
			is_system = excluded.is_system,
			created_by = excluded.created_by,
			is_default = excluded.is_default
`

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.Category) error {
	_, err := r.db.ExecContext(ctx, upsertQuery,
		c.Id, c.Name, string(c.Type), boolToInt(c.IsSystem), nullIfEmpty(c.CreatedBy), boolToInt(c.IsDefault))
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	r.hub.Broadcast(Topic)
	return nil
}

func (r *SQLiteRepository) InsertBatch(ctx context.Context, cs []models.Category) error {
	for i := range cs {
		c := &cs[i]
		_, err := r.db.ExecContext(ctx, upsertQuery,
			c.Id, c.Name, string(c.Type), boolToInt(c.IsSystem), nullIfEmpty(c.CreatedBy), boolToInt(c.IsDefault))
		if err != nil {
			return fmt.Errorf("failed to upsert category %s: %w", c.Id, err)
		}
	}
	r.hub.Broadcast(Topic)
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, c *models.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name=?, type=?, is_system=?, created_by=?, is_default=? WHERE id=?`,
		c.Name, string(c.Type), boolToInt(c.IsSystem), nullIfEmpty(c.CreatedBy), boolToInt(c.IsDefault), c.Id)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
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

// WatchAll re-queries all categories after each change signal.
func (r *SQLiteRepository) WatchAll(ctx context.Context) (<-chan []models.Category, error) {
	initial, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	signals := r.hub.Subscribe(ctx, Topic)
	out := make(chan []models.Category, 1)
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
				snapshot, err := r.GetAll(ctx)
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
