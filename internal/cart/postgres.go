package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"storefront/internal/database"
)

// querier is the part of database.DB the repository needs
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) error
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PostgresRepository stores one snapshot per terminal as JSONB
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository creates a repository on top of the database pool
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, terminalID string, snapshot Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}

	if err := r.db.Exec(ctx, database.UpsertCartSnapshotSQL, terminalID, payload); err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context, terminalID string) (Snapshot, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, database.GetCartSnapshotSQL, terminalID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrSnapshotNotFound
		}
		return Snapshot{}, fmt.Errorf("failed to load cart snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}
	return snap, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, terminalID string) error {
	if err := r.db.Exec(ctx, database.DeleteCartSnapshotSQL, terminalID); err != nil {
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return nil
}
