package services

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/finanse/internal/local/budgets"
	"github.com/dmitrijs2005/finanse/internal/local/categories"
	"github.com/dmitrijs2005/finanse/internal/local/goals"
	"github.com/dmitrijs2005/finanse/internal/local/metadata"
	"github.com/dmitrijs2005/finanse/internal/local/notify"
	"github.com/dmitrijs2005/finanse/internal/local/templates"
	"github.com/dmitrijs2005/finanse/internal/local/transactions"
	"github.com/dmitrijs2005/finanse/internal/local/users"
	"github.com/dmitrijs2005/finanse/internal/logging"
	"github.com/dmitrijs2005/finanse/internal/remote"

	_ "modernc.org/sqlite"
)

const testSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'USER',
  created_at INTEGER NOT NULL,
  is_blocked INTEGER NOT NULL DEFAULT 0,
  pin_hash BLOB,
  biometric_enabled INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  is_system INTEGER NOT NULL DEFAULT 0,
  created_by TEXT,
  is_default INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE transactions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  amount REAL NOT NULL,
  type TEXT NOT NULL,
  category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
  date INTEGER NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  synced INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE budgets (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
  amount REAL NOT NULL,
  period TEXT NOT NULL,
  start_date INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE financial_goals (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  target_amount REAL NOT NULL,
  current_amount REAL NOT NULL DEFAULT 0,
  deadline INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  is_completed INTEGER NOT NULL DEFAULT 0,
  description TEXT NOT NULL DEFAULT ''
);

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

CREATE TABLE metadata (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`

type testEnv struct {
	db    *sql.DB
	hub   *notify.Hub
	store *remote.MemoryStore
	log   logging.Logger

	users        users.Repository
	categories   categories.Repository
	transactions transactions.Repository
	budgets      budgets.Repository
	goals        goals.Repository
	templates    templates.Repository
	metadata     metadata.Repository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	hub := notify.NewHub()

	return &testEnv{
		db:    db,
		hub:   hub,
		store: remote.NewMemoryStore(),
		log:   logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),

		users:        users.NewSQLiteRepository(db, hub),
		categories:   categories.NewSQLiteRepository(db, hub),
		transactions: transactions.NewSQLiteRepository(db, hub),
		budgets:      budgets.NewSQLiteRepository(db, hub),
		goals:        goals.NewSQLiteRepository(db, hub),
		templates:    templates.NewSQLiteRepository(db, hub),
		metadata:     metadata.NewSQLiteRepository(db),
	}
}
