// Package localdb opens the on-device SQLite database, applies the embedded
// schema migrations, and wires up the per-entity repositories. The local
// database is the single source of truth for all reads.
package localdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/finanse/internal/local/budgets"
	"github.com/dmitrijs2005/finanse/internal/local/categories"
	"github.com/dmitrijs2005/finanse/internal/local/goals"
	"github.com/dmitrijs2005/finanse/internal/local/metadata"
	"github.com/dmitrijs2005/finanse/internal/local/migrations"
	"github.com/dmitrijs2005/finanse/internal/local/notify"
	"github.com/dmitrijs2005/finanse/internal/local/templates"
	"github.com/dmitrijs2005/finanse/internal/local/transactions"
	"github.com/dmitrijs2005/finanse/internal/local/users"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles every local-store repository over one database.
type Repositories struct {
	Users        users.Repository
	Categories   categories.Repository
	Transactions transactions.Repository
	Budgets      budgets.Repository
	Goals        goals.Repository
	Templates    templates.Repository
	Metadata     metadata.Repository

	Hub *notify.Hub
	DB  *sql.DB
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the local database at dsn, migrates it,
// enables foreign-key enforcement, and returns the repository set.
func Open(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local db: %w", err)
	}

	// One connection keeps SQLite writes serialized and makes the pragma
	// below apply to every statement.
	db.SetMaxOpenConns(1)

	// SQLite enforces the ON DELETE SET NULL references only with this pragma.
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	hub := notify.NewHub()

	return &Repositories{
		Users:        users.NewSQLiteRepository(db, hub),
		Categories:   categories.NewSQLiteRepository(db, hub),
		Transactions: transactions.NewSQLiteRepository(db, hub),
		Budgets:      budgets.NewSQLiteRepository(db, hub),
		Goals:        goals.NewSQLiteRepository(db, hub),
		Templates:    templates.NewSQLiteRepository(db, hub),
		Metadata:     metadata.NewSQLiteRepository(db),
		Hub:          hub,
		DB:           db,
	}, nil
}

// Close closes the underlying database.
func (r *Repositories) Close() error {
	return r.DB.Close()
}
