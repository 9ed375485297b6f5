package services

import (
	"context"
	"time"

	"whereabouts-backend/internal/models"
)

// Store interfaces consumed by the services. The pgx repositories in
// internal/repository satisfy them; tests use in-memory fakes.

// UserStore persists users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// ContactStore persists contact edges and their lifecycle.
type ContactStore interface {
	CreateRequest(ctx context.Context, req *models.ContactRequest) error
	GetRequestByID(ctx context.Context, id string) (*models.ContactRequest, error)
	ExistsBetween(ctx context.Context, a, b string) (bool, error)
	Accept(ctx context.Context, id string, acceptedAt time.Time) error
	DeletePending(ctx context.Context, id string) error
	DeleteAccepted(ctx context.Context, a, b string) error
	AreContacts(ctx context.Context, a, b string) (bool, error)
	ListContacts(ctx context.Context, userID string) ([]*models.Contact, error)
	ListIncoming(ctx context.Context, userID string) ([]*models.ContactRequest, error)
	ListOutgoing(ctx context.Context, userID string) ([]*models.ContactRequest, error)
}

// PermissionStore persists precision grants keyed by (granter, grantee).
type PermissionStore interface {
	Get(ctx context.Context, granterID, granteeID string) (models.PrecisionLevel, error)
	Upsert(ctx context.Context, granterID, granteeID string, level models.PrecisionLevel) error
	DeleteBetween(ctx context.Context, a, b string) error
}

// LocationStore persists the single latest location record per user.
type LocationStore interface {
	Upsert(ctx context.Context, rec *models.LocationRecord) error
	Get(ctx context.Context, userID string) (*models.LocationRecord, error)
}
