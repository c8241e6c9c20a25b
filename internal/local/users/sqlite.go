package users

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

const selectColumns = `id, email, name, role, created_at, is_blocked, pin_hash, biometric_enabled`

func scanUser(scan func(dest ...any) error) (models.User, error) {
	var u models.User
	var createdAt int64
	var blocked, biometric int

	err := scan(&u.Id, &u.Email, &u.Name, (*string)(&u.Role), &createdAt, &blocked, &u.PinHash, &biometric)
	if err != nil {
		return u, err
	}

	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	u.IsBlocked = blocked != 0
	u.BiometricEnabled = biometric != 0
	return u, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM users WHERE id=?`, id)
	u, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (id, email, name, role, created_at, is_blocked, pin_hash, biometric_enabled)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET email = excluded.email,
				name = excluded.name,
				role = excluded.role,
				is_blocked = excluded.is_blocked,
				pin_hash = excluded.pin_hash,
				biometric_enabled = excluded.biometric_enabled
	`
	_, err := r.db.ExecContext(ctx, query,
		u.Id, u.Email, u.Name, string(u.Role), u.CreatedAt.UnixMilli(),
		boolToInt(u.IsBlocked), u.PinHash, boolToInt(u.BiometricEnabled))
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	r.hub.Broadcast(Topic)
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, u *models.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email=?, name=?, role=?, is_blocked=?, pin_hash=?, biometric_enabled=? WHERE id=?`,
		u.Email, u.Name, string(u.Role), boolToInt(u.IsBlocked), u.PinHash, boolToInt(u.BiometricEnabled), u.Id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
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

// WatchAll re-queries the full user list after each change signal.
func (r *SQLiteRepository) WatchAll(ctx context.Context) (<-chan []models.User, error) {
	initial, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	signals := r.hub.Subscribe(ctx, Topic)
	out := make(chan []models.User, 1)
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

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
