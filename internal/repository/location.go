package repository

import (
	"context"
	"errors"
	"fmt"

	"whereabouts-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LocationRepository handles database operations for location records.
// Each user has at most one row; a publish overwrites the prior record.
type LocationRepository struct {
	db *pgxpool.Pool
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{db: db}
}

// Upsert stores the user's latest location record
func (r *LocationRepository) Upsert(ctx context.Context, rec *models.LocationRecord) error {
	query := `
		INSERT INTO locations (user_id, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	_, err := r.db.Exec(ctx, query, rec.UserID, rec.Payload, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to store location: %w", err)
	}
	return nil
}

// Get retrieves a user's location record. Returns ErrNotFound when the user
// has never published.
func (r *LocationRepository) Get(ctx context.Context, userID string) (*models.LocationRecord, error) {
	query := `
		SELECT user_id, payload, updated_at
		FROM locations
		WHERE user_id = $1
	`
	var rec models.LocationRecord
	err := r.db.QueryRow(ctx, query, userID).Scan(&rec.UserID, &rec.Payload, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("location record: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &rec, nil
}
