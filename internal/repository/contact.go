package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whereabouts-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContactRepository handles database operations for contact edges.
//
// The contact_requests table carries a unique index on
// (LEAST(requester_id, recipient_id), GREATEST(requester_id, recipient_id)),
// so concurrent requests between the same pair resolve to one winner and the
// loser's insert comes back as ErrDuplicate.
type ContactRepository struct {
	db *pgxpool.Pool
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{db: db}
}

// CreateRequest inserts a new pending edge requester -> recipient
func (r *ContactRepository) CreateRequest(ctx context.Context, req *models.ContactRequest) error {
	query := `
		INSERT INTO contact_requests (id, requester_id, recipient_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		req.ID, req.RequesterID, req.RecipientID, req.Status, req.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("relationship already exists: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create contact request: %w", err)
	}
	return nil
}

// GetRequestByID retrieves a request by ID
func (r *ContactRepository) GetRequestByID(ctx context.Context, id string) (*models.ContactRequest, error) {
	query := `
		SELECT id, requester_id, recipient_id, status, created_at, accepted_at
		FROM contact_requests
		WHERE id = $1
	`
	var req models.ContactRequest
	err := r.db.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.RequesterID, &req.RecipientID, &req.Status, &req.CreatedAt, &req.AcceptedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("contact request: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contact request: %w", err)
	}
	return &req, nil
}

// ExistsBetween reports whether any edge (pending or accepted, either
// direction) exists between the two users
func (r *ContactRepository) ExistsBetween(ctx context.Context, a, b string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM contact_requests
			WHERE (requester_id = $1 AND recipient_id = $2)
			   OR (requester_id = $2 AND recipient_id = $1)
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, a, b).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check relationship existence: %w", err)
	}
	return exists, nil
}

// Accept transitions a pending request to accepted
func (r *ContactRepository) Accept(ctx context.Context, id string, acceptedAt time.Time) error {
	query := `
		UPDATE contact_requests
		SET status = $1, accepted_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.Exec(ctx, query, models.RequestAccepted, acceptedAt, id, models.RequestPending)
	if err != nil {
		return fmt.Errorf("failed to accept contact request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("pending contact request: %w", ErrNotFound)
	}
	return nil
}

// DeletePending removes a pending edge by ID (decline or cancel)
func (r *ContactRepository) DeletePending(ctx context.Context, id string) error {
	query := `DELETE FROM contact_requests WHERE id = $1 AND status = $2`
	result, err := r.db.Exec(ctx, query, id, models.RequestPending)
	if err != nil {
		return fmt.Errorf("failed to delete contact request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("pending contact request: %w", ErrNotFound)
	}
	return nil
}

// DeleteAccepted removes the accepted edge between two users
func (r *ContactRepository) DeleteAccepted(ctx context.Context, a, b string) error {
	query := `
		DELETE FROM contact_requests
		WHERE status = $1
		  AND ((requester_id = $2 AND recipient_id = $3)
		    OR (requester_id = $3 AND recipient_id = $2))
	`
	result, err := r.db.Exec(ctx, query, models.RequestAccepted, a, b)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("contact: %w", ErrNotFound)
	}
	return nil
}

// AreContacts reports whether an accepted edge exists between the two users
func (r *ContactRepository) AreContacts(ctx context.Context, a, b string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM contact_requests
			WHERE status = $1
			  AND ((requester_id = $2 AND recipient_id = $3)
			    OR (requester_id = $3 AND recipient_id = $2))
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, models.RequestAccepted, a, b).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check contact status: %w", err)
	}
	return exists, nil
}

// ListContacts returns the users on the other end of the user's accepted
// edges, direction-agnostic, ordered by acceptance time for stable display
func (r *ContactRepository) ListContacts(ctx context.Context, userID string) ([]*models.Contact, error) {
	query := `
		SELECT u.id, u.email, u.name, u.created_at
		FROM contact_requests cr
		JOIN users u ON u.id = CASE
			WHEN cr.requester_id = $1 THEN cr.recipient_id
			ELSE cr.requester_id
		END
		WHERE cr.status = $2
		  AND (cr.requester_id = $1 OR cr.recipient_id = $1)
		ORDER BY cr.accepted_at
	`
	rows, err := r.db.Query(ctx, query, userID, models.RequestAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.Email, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// ListIncoming returns pending requests where the user is the recipient
func (r *ContactRepository) ListIncoming(ctx context.Context, userID string) ([]*models.ContactRequest, error) {
	return r.listPending(ctx, `recipient_id`, userID)
}

// ListOutgoing returns pending requests where the user is the requester
func (r *ContactRepository) ListOutgoing(ctx context.Context, userID string) ([]*models.ContactRequest, error) {
	return r.listPending(ctx, `requester_id`, userID)
}

func (r *ContactRepository) listPending(ctx context.Context, column, userID string) ([]*models.ContactRequest, error) {
	query := `
		SELECT id, requester_id, recipient_id, status, created_at, accepted_at
		FROM contact_requests
		WHERE ` + column + ` = $1 AND status = $2
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, userID, models.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ContactRequest
	for rows.Next() {
		var req models.ContactRequest
		err := rows.Scan(
			&req.ID, &req.RequesterID, &req.RecipientID, &req.Status, &req.CreatedAt, &req.AcceptedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact request: %w", err)
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requests, nil
}
