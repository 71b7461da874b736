package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	// stateRowID is the key of the live row in app_state.
	stateRowID = 1
	// preservedRowID holds the last document that failed to decode.
	preservedRowID = 2
)

// PostgresBackend keeps the document as a jsonb value in a single row, so the
// whole-document semantics are the same as the file backend.
type PostgresBackend struct {
	DB *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{DB: db}
}

func (b *PostgresBackend) Init(ctx context.Context) error {
	_, err := b.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS app_state (
		id SMALLINT PRIMARY KEY,
		data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return fmt.Errorf("create app_state table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.DB.QueryRowContext(ctx, "SELECT data FROM app_state WHERE id = $1", stateRowID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select app_state: %w", err)
	}
	return data, nil
}

func (b *PostgresBackend) Write(ctx context.Context, data []byte) error {
	// lib/pq wants jsonb parameters as text, not bytea.
	_, err := b.DB.ExecContext(ctx, `INSERT INTO app_state (id, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`, stateRowID, string(data))
	if err != nil {
		return fmt.Errorf("upsert app_state: %w", err)
	}
	return nil
}

// Preserve copies the live row to preservedRowID, replacing any earlier copy.
func (b *PostgresBackend) Preserve(ctx context.Context) (string, error) {
	_, err := b.DB.ExecContext(ctx, `INSERT INTO app_state (id, data, updated_at)
		SELECT $1, data, NOW() FROM app_state WHERE id = $2
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`, preservedRowID, stateRowID)
	if err != nil {
		return "", fmt.Errorf("preserve app_state: %w", err)
	}
	return fmt.Sprintf("app_state row %d", preservedRowID), nil
}
