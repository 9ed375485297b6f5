package services

import (
	"context"
	"errors"
	"fmt"

	"whereabouts-backend/internal/models"
	"whereabouts-backend/internal/repository"
)

// PermissionService manages precision grants. A grant only has meaning
// between accepted contacts; the contact gate is enforced here, at the
// boundary, so the store never re-derives relationship status.
type PermissionService struct {
	permissionStore PermissionStore
	contactStore    ContactStore
}

// NewPermissionService creates a new permission service
func NewPermissionService(permissionStore PermissionStore, contactStore ContactStore) *PermissionService {
	return &PermissionService{
		permissionStore: permissionStore,
		contactStore:    contactStore,
	}
}

// GetLevel returns the level granter has granted grantee, or the default
// planet level when no grant exists. Never fails on absence.
func (s *PermissionService) GetLevel(ctx context.Context, granterID, granteeID string) (models.PrecisionLevel, error) {
	level, err := s.permissionStore.Get(ctx, granterID, granteeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.DefaultLevel, nil
		}
		return "", fmt.Errorf("failed to get permission: %w", err)
	}
	return level, nil
}

// SetLevel upserts the level granter allows grantee, replacing any prior
// value. Fails with ErrInvalidArgument for an unknown level and ErrForbidden
// when the two users are not accepted contacts.
func (s *PermissionService) SetLevel(ctx context.Context, granterID, granteeID, level string) (models.PrecisionLevel, error) {
	parsed, err := models.ParsePrecisionLevel(level)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	areContacts, err := s.contactStore.AreContacts(ctx, granterID, granteeID)
	if err != nil {
		return "", fmt.Errorf("failed to check contact status: %w", err)
	}
	if !areContacts {
		return "", fmt.Errorf("%w: not a contact", ErrForbidden)
	}

	if err := s.permissionStore.Upsert(ctx, granterID, granteeID, parsed); err != nil {
		return "", fmt.Errorf("failed to set permission: %w", err)
	}

	return parsed, nil
}

// GetPair returns both directions of the grant between a user and a contact:
// what the user has granted and what they receive. Fails with ErrForbidden
// for non-contacts.
func (s *PermissionService) GetPair(ctx context.Context, userID, contactID string) (granted, received models.PrecisionLevel, err error) {
	areContacts, err := s.contactStore.AreContacts(ctx, userID, contactID)
	if err != nil {
		return "", "", fmt.Errorf("failed to check contact status: %w", err)
	}
	if !areContacts {
		return "", "", fmt.Errorf("%w: not a contact", ErrForbidden)
	}

	granted, err = s.GetLevel(ctx, userID, contactID)
	if err != nil {
		return "", "", err
	}
	received, err = s.GetLevel(ctx, contactID, userID)
	if err != nil {
		return "", "", err
	}
	return granted, received, nil
}

// Levels returns the fixed ordered enumeration and the default level
func (s *PermissionService) Levels() ([]models.PrecisionLevel, models.PrecisionLevel) {
	return models.PrecisionLevels, models.DefaultLevel
}
