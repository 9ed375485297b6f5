package repository

import (
	"context"
	"errors"
	"fmt"

	"whereabouts-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PermissionRepository handles database operations for precision grants.
// A grant is keyed by the ordered (granter, grantee) pair and holds exactly
// one level; absence means the default applies.
type PermissionRepository struct {
	db *pgxpool.Pool
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(db *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// Get retrieves the stored level for (granter, grantee).
// Returns ErrNotFound when no grant exists.
func (r *PermissionRepository) Get(ctx context.Context, granterID, granteeID string) (models.PrecisionLevel, error) {
	query := `
		SELECT level FROM permissions
		WHERE granter_id = $1 AND grantee_id = $2
	`
	var level models.PrecisionLevel
	err := r.db.QueryRow(ctx, query, granterID, granteeID).Scan(&level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("permission grant: %w", ErrNotFound)
		}
		return "", fmt.Errorf("failed to get permission: %w", err)
	}
	return level, nil
}

// Upsert stores a level for (granter, grantee), replacing any prior value
func (r *PermissionRepository) Upsert(ctx context.Context, granterID, granteeID string, level models.PrecisionLevel) error {
	query := `
		INSERT INTO permissions (granter_id, grantee_id, level)
		VALUES ($1, $2, $3)
		ON CONFLICT (granter_id, grantee_id) DO UPDATE SET level = excluded.level
	`
	_, err := r.db.Exec(ctx, query, granterID, granteeID, level)
	if err != nil {
		return fmt.Errorf("failed to set permission: %w", err)
	}
	return nil
}

// DeleteBetween removes both directions' grants between two users.
// Deleting an absent grant is not an error, so the cascade on contact removal
// is safe to retry.
func (r *PermissionRepository) DeleteBetween(ctx context.Context, a, b string) error {
	query := `
		DELETE FROM permissions
		WHERE (granter_id = $1 AND grantee_id = $2)
		   OR (granter_id = $2 AND grantee_id = $1)
	`
	_, err := r.db.Exec(ctx, query, a, b)
	if err != nil {
		return fmt.Errorf("failed to delete permissions: %w", err)
	}
	return nil
}
