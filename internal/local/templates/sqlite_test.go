package templates

import (
	"context"
	"database/sql"
	"testing"
	"time"

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
CREATE TABLE financial_templates (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  content TEXT NOT NULL,
  category TEXT NOT NULL,
  created_by TEXT,
  created_at INTEGER NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  views INTEGER NOT NULL DEFAULT 0,
  likes INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)
	return db
}

func newTemplate(id string, tc models.TemplateCategory, createdAt time.Time) *models.FinancialTemplate {
	return &models.FinancialTemplate{
		Id:        id,
		Title:     "How to save",
		Content:   "Spend less than you earn.",
		Category:  tc,
		CreatedAt: createdAt,
		IsActive:  true,
	}
}

func TestInsertAndGetByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, notify.NewHub())
	ctx := context.Background()

	createdAt := time.UnixMilli(1700000000000).UTC()
	require.NoError(t, r.Insert(ctx, newTemplate("t1", models.TemplateCategorySavingTips, createdAt)))

	got, err := r.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "How to save", got.Title)
	assert.Equal(t, models.TemplateCategorySavingTips, got.Category)
	assert.Equal(t, createdAt, got.CreatedAt)
	assert.Equal(t, "", got.CreatedBy)
	assert.True(t, got.IsActive)
	assert.Equal(t, 0, got.Views)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, notify.NewHub())

	_, err := r.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAllActive_OrderAndFilter(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, notify.NewHub())
	ctx := context.Background()

	older := time.UnixMilli(1700000000000).UTC()
	newer := older.Add(time.Hour)

	require.NoError(t, r.Insert(ctx, newTemplate("t1", models.TemplateCategoryGeneral, older)))
	require.NoError(t, r.Insert(ctx, newTemplate("t2", models.TemplateCategoryGeneral, newer)))

	retired := newTemplate("t3", models.TemplateCategoryGeneral, newer)
	retired.IsActive = false
	require.NoError(t, r.Insert(ctx, retired))

	got, err := r.GetAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t2", got[0].Id)
	assert.Equal(t, "t1", got[1].Id)
}

func TestGetAllByCategory(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, notify.NewHub())
	ctx := context.Background()

	createdAt := time.UnixMilli(1700000000000).UTC()
	require.NoError(t, r.Insert(ctx, newTemplate("t1", models.TemplateCategoryBudgeting, createdAt)))
	require.NoError(t, r.Insert(ctx, newTemplate("t2", models.TemplateCategoryInvestment, createdAt)))

	got, err := r.GetAllByCategory(ctx, models.TemplateCategoryBudgeting)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].Id)
}

func TestGetPopular_OrderAndLimit(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, notify.NewHub())
	ctx := context.Background()

	createdAt := time.UnixMilli(1700000000000).UTC()
	for _, tt := range []struct {
		id    string
		views int
	}{{"t1", 3}, {"t2", 9}, {"t3", 5}} {
		tpl := newTemplate(tt.id, models.TemplateCategoryGeneral, createdAt)
		tpl.Views = tt.views
		require.NoError(t, r.Insert(ctx, tpl))
	}

	got, err := r.GetPopular(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t2", got[0].Id)
	assert.Equal(t, "t3", got[1].Id)
}

func TestIncrementViews(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, notify.NewHub())
	ctx := context.Background()

	createdAt := time.UnixMilli(1700000000000).UTC()
	require.NoError(t, r.Insert(ctx, newTemplate("t1", models.TemplateCategoryGeneral, createdAt)))

	require.NoError(t, r.IncrementViews(ctx, "t1"))
	require.NoError(t, r.IncrementViews(ctx, "t1"))

	got, err := r.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)

	require.ErrorIs(t, r.IncrementViews(ctx, "missing"), common.ErrNotFound)
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, notify.NewHub())
	ctx := context.Background()

	tpl := newTemplate("missing", models.TemplateCategoryGeneral, time.UnixMilli(1700000000000).UTC())
	require.ErrorIs(t, r.Update(ctx, tpl), common.ErrNotFound)
	require.ErrorIs(t, r.Delete(ctx, "missing"), common.ErrNotFound)
}

func TestWatchActive_EmitsOnWrites(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, notify.NewHub())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := r.WatchActive(ctx)
	require.NoError(t, err)

	initial := <-ch
	assert.Empty(t, initial)

	createdAt := time.UnixMilli(1700000000000).UTC()
	require.NoError(t, r.Insert(ctx, newTemplate("t1", models.TemplateCategoryGeneral, createdAt)))

	next := <-ch
	require.Len(t, next, 1)
	assert.Equal(t, "t1", next[0].Id)
}
