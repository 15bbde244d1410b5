package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
)

// PgxStateRepository persists whole documents in the app_state table.
type PgxStateRepository struct {
	Pool *pgxpool.Pool
}

// NewStateRepository creates a new repository for stored documents.
func NewStateRepository(pool *pgxpool.Pool) *PgxStateRepository {
	return &PgxStateRepository{Pool: pool}
}

// Ensure implementation matches interface
var _ ports.StateRepository = (*PgxStateRepository)(nil)

// Find retrieves the document row for the given key.
func (r *PgxStateRepository) Find(ctx context.Context, key string) (*ports.AppState, error) {
	query := `
		SELECT id, data, updated_at, schema_version
		FROM app_state
		WHERE id = $1;
	`
	var state ports.AppState
	err := r.Pool.QueryRow(ctx, query, key).Scan(
		&state.ID,
		&state.Data,
		&state.UpdatedAt,
		&state.SchemaVersion,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find app state %s: %w", key, err)
	}
	return &state, nil
}

// Upsert creates or overwrites the document row, returning the new write
// timestamp.
func (r *PgxStateRepository) Upsert(ctx context.Context, key string, data json.RawMessage, schemaVersion int) (time.Time, error) {
	query := `
		INSERT INTO app_state (id, data, updated_at, schema_version)
		VALUES ($1, $2, now(), $3)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = now(),
			schema_version = EXCLUDED.schema_version
		RETURNING updated_at;
	`
	var updatedAt time.Time
	err := r.Pool.QueryRow(ctx, query, key, data, schemaVersion).Scan(&updatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to upsert app state %s: %w", key, err)
	}
	return updatedAt, nil
}

// Delete removes the document row.
func (r *PgxStateRepository) Delete(ctx context.Context, key string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM app_state WHERE id = $1;`, key)
	if err != nil {
		return fmt.Errorf("failed to delete app state %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
