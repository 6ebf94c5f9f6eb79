package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dtroode/gophsocial/internal/model"
)

var _ model.SnapshotStore = (*SnapshotRepository)(nil)

type SnapshotRepository struct {
	db *Connection
}

func NewSnapshotRepository(db *Connection) *SnapshotRepository {
	return &SnapshotRepository{
		db: db,
	}
}

func (r *SnapshotRepository) Save(ctx context.Context, name string, payload []byte) error {
	query := `
		INSERT INTO snapshots (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, name, payload); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", name, err)
	}
	return nil
}

func (r *SnapshotRepository) Load(ctx context.Context, name string) ([]byte, error) {
	query := `SELECT payload FROM snapshots WHERE name = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot %s: %w", name, err)
	}
	return payload, nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, name string) error {
	query := `DELETE FROM snapshots WHERE name = $1`

	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}
	return nil
}
