package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const schema = `
	CREATE TABLE IF NOT EXISTS terminal_drafts (
		terminal_key TEXT PRIMARY KEY,
		caixa_id     TEXT NOT NULL DEFAULT '',
		snapshot     JSONB NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL draft store.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

// EnsureSchema creates the drafts table when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (r *postgresStore) Save(ctx context.Context, d *Draft) error {
	snapshot, err := json.Marshal(d.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal draft failed: %w", err)
	}
	query := `
		INSERT INTO terminal_drafts (terminal_key, caixa_id, snapshot, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (terminal_key) DO UPDATE
		SET caixa_id = EXCLUDED.caixa_id, snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.ExecContext(ctx, query, d.Key, d.CaixaID, snapshot, d.UpdatedAt)
	return err
}

func (r *postgresStore) Load(ctx context.Context, key string) (*Draft, error) {
	d := &Draft{Key: key}
	var snapshot []byte
	query := `
		SELECT caixa_id, snapshot, updated_at
		FROM terminal_drafts
		WHERE terminal_key = $1
	`
	err := r.db.QueryRowContext(ctx, query, key).Scan(&d.CaixaID, &snapshot, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &d.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal draft failed: %w", err)
	}
	return d, nil
}

func (r *postgresStore) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM terminal_drafts WHERE terminal_key = $1`, key)
	return err
}
