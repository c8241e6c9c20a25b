package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/finanse/internal/common"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps documents in a single JSONB table keyed by
// (collection, key). The upsert in Set gives the same last-write-wins
// replacement semantics as an object store.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres store: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Bootstrap creates the documents table if it does not exist yet.
func (s *PostgresStore) Bootstrap(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			key        TEXT NOT NULL,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, key)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to bootstrap documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, key string, doc map[string]any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s/%s: %w", collection, key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, key, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`, collection, key, payload)
	if err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal patch %s/%s: %w", collection, key, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET payload = payload || $3, updated_at = now()
		WHERE collection = $1 AND key = $2
	`, collection, key, patch)
	if err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, key, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of %s/%s: %w", collection, key, err)
	}
	if rows == 0 {
		return fmt.Errorf("update %s/%s: %w", collection, key, common.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM documents WHERE collection = $1 AND key = $2
	`, collection, key)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
