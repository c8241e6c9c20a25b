package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE items (id TEXT PRIMARY KEY, n INTEGER NOT NULL)`)
	require.NoError(t, err)
	return db
}

func TestWithTx_Commit(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO items (id, n) VALUES (?, ?)`, "a", 1)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT n FROM items WHERE id=?`, "a").Scan(&n))
	require.Equal(t, 1, n)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO items (id, n) VALUES (?, ?)`, "a", 1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var cnt int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&cnt))
	require.Equal(t, 0, cnt)
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.Panics(t, func() {
		_ = WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO items (id, n) VALUES (?, ?)`, "a", 1)
			panic("boom")
		})
	})

	var cnt int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&cnt))
	require.Equal(t, 0, cnt)
}
