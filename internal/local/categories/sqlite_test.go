package categories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/finanse/internal/common"
	"github.com/dmitrijs2005/finanse/internal/local/notify"
	"github.com/dmitrijs2005/finanse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  is_system INTEGER NOT NULL DEFAULT 0,
  created_by TEXT,
  is_default INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)
	return db
}

func TestInsertAndQueries(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, notify.NewHub())
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, &models.Category{
		Id: "c1", Name: "Salary", Type: models.TransactionTypeIncome, IsSystem: true, IsDefault: true,
	}))
	require.NoError(t, r.Insert(ctx, &models.Category{
		Id: "c2", Name: "Hobby", Type: models.TransactionTypeExpense, CreatedBy: "u1",
	}))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// system categories first
	assert.Equal(t, "c1", all[0].Id)

	sys, err := r.GetSystem(ctx)
	require.NoError(t, err)
	require.Len(t, sys, 1)
	assert.True(t, sys[0].IsSystem)

	expenses, err := r.GetAllByType(ctx, models.TransactionTypeExpense)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "u1", expenses[0].CreatedBy)

	got, err := r.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "", got.CreatedBy)
}

func TestInsertBatchAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, notify.NewHub())
	ctx := context.Background()

	batch := []models.Category{
		{Id: "c1", Name: "A", Type: models.TransactionTypeExpense},
		{Id: "c2", Name: "B", Type: models.TransactionTypeExpense},
	}
	require.NoError(t, r.InsertBatch(ctx, batch))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	c := all[0]
	c.Name = "Renamed"
	require.NoError(t, r.Update(ctx, &c))

	got, err := r.GetByID(ctx, c.Id)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	require.ErrorIs(t, r.Update(ctx, &models.Category{Id: "missing"}), common.ErrNotFound)
}

func TestDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, notify.NewHub())
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, &models.Category{Id: "c1", Name: "A", Type: models.TransactionTypeExpense}))
	require.NoError(t, r.Delete(ctx, "c1"))

	_, err := r.GetByID(ctx, "c1")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.ErrorIs(t, r.Delete(ctx, "c1"), common.ErrNotFound)
}

func TestWatchAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, notify.NewHub())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := r.WatchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, <-ch)

	require.NoError(t, r.Insert(ctx, &models.Category{Id: "c1", Name: "A", Type: models.TransactionTypeExpense}))
	snapshot := <-ch
	require.Len(t, snapshot, 1)
}
