package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whereabouts-backend/internal/models"
	"whereabouts-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// LocationService stores published location records and answers contact
// location queries: contact gate first, then the owner-granted precision
// level, then the disclosure filter and staleness annotation.
type LocationService struct {
	locationStore LocationStore
	contactStore  ContactStore
	permissions   *PermissionService
	now           func() time.Time
}

// NewLocationService creates a new location service
func NewLocationService(locationStore LocationStore, contactStore ContactStore, permissions *PermissionService) *LocationService {
	return &LocationService{
		locationStore: locationStore,
		contactStore:  contactStore,
		permissions:   permissions,
		now:           time.Now,
	}
}

// LocationView is a filtered location record with its freshness metadata
type LocationView struct {
	Data      *FilteredLocation `json:"data"`
	UpdatedAt time.Time         `json:"updated_at"`
	Stale     bool              `json:"stale"`
}

// ContactLocation is the answer to a single-contact location query
type ContactLocation struct {
	Location        *LocationView         `json:"location"`
	PermissionLevel models.PrecisionLevel `json:"permissionLevel"`
}

// ContactWithLocation is one entry of the bulk contact-locations query.
// PermissionGranted is the level the viewer granted the contact;
// PermissionReceived is the level the contact granted the viewer and is what
// filtered Location.
type ContactWithLocation struct {
	ID                 string                `json:"id"`
	Name               string                `json:"name"`
	Email              string                `json:"email"`
	PermissionGranted  models.PrecisionLevel `json:"permissionGranted"`
	PermissionReceived models.PrecisionLevel `json:"permissionReceived"`
	Location           *LocationView         `json:"location"`
}

// Publish overwrites the owner's location record with the given payload and
// stamps the server update time. The payload is stored opaquely; contents are
// only parsed when a viewer reads them.
func (s *LocationService) Publish(ctx context.Context, ownerID, payload string) (*models.LocationRecord, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: payload is required", ErrInvalidArgument)
	}

	rec := &models.LocationRecord{
		UserID:    ownerID,
		Payload:   payload,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.locationStore.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store location: %w", err)
	}
	return rec, nil
}

// GetOwn returns the owner's raw, unfiltered record, or nil when the owner
// has never published
func (s *LocationService) GetOwn(ctx context.Context, ownerID string) (*models.LocationRecord, error) {
	rec, err := s.locationStore.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return rec, nil
}

// GetContactLocation returns ownerID's location as viewerID may see it.
// The contact gate runs before any permission or location read; non-contacts
// fail with ErrForbidden regardless of stored grants. A contact who never
// published yields a nil Location alongside the effective permission level.
func (s *LocationService) GetContactLocation(ctx context.Context, viewerID, ownerID string) (*ContactLocation, error) {
	areContacts, err := s.contactStore.AreContacts(ctx, viewerID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check contact status: %w", err)
	}
	if !areContacts {
		return nil, fmt.Errorf("%w: not a contact", ErrForbidden)
	}

	// The owner is the granter.
	level, err := s.permissions.GetLevel(ctx, ownerID, viewerID)
	if err != nil {
		return nil, err
	}

	rec, err := s.locationStore.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ContactLocation{PermissionLevel: level}, nil
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	return &ContactLocation{
		Location:        s.buildView(rec, level, viewerID, ownerID),
		PermissionLevel: level,
	}, nil
}

// GetAllContactLocations returns every contact of viewerID with their
// filtered location. Contacts without a published record are listed with a
// nil location, never dropped.
func (s *LocationService) GetAllContactLocations(ctx context.Context, viewerID string) ([]*ContactWithLocation, error) {
	contacts, err := s.contactStore.ListContacts(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	results := make([]*ContactWithLocation, 0, len(contacts))
	for _, contact := range contacts {
		granted, err := s.permissions.GetLevel(ctx, viewerID, contact.ID)
		if err != nil {
			return nil, err
		}
		received, err := s.permissions.GetLevel(ctx, contact.ID, viewerID)
		if err != nil {
			return nil, err
		}

		entry := &ContactWithLocation{
			ID:                 contact.ID,
			Name:               contact.Name,
			Email:              contact.Email,
			PermissionGranted:  granted,
			PermissionReceived: received,
		}

		rec, err := s.locationStore.Get(ctx, contact.ID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("failed to get location: %w", err)
			}
		} else {
			entry.Location = s.buildView(rec, received, viewerID, contact.ID)
		}

		results = append(results, entry)
	}

	return results, nil
}

// buildView parses and filters a raw record for one viewer. Unparseable
// payloads degrade to "no location" rather than failing the query.
func (s *LocationService) buildView(rec *models.LocationRecord, level models.PrecisionLevel, viewerID, ownerID string) *LocationView {
	payload, err := models.ParseLocationPayload(rec.Payload)
	if err != nil {
		log.Warn().
			Err(err).
			Str("user_id", rec.UserID).
			Msg("Stored location payload is unparseable, treating as absent")
		return nil
	}

	return &LocationView{
		Data:      FilterPayload(payload, level, viewerID, ownerID),
		UpdatedAt: rec.UpdatedAt,
		Stale:     IsStale(rec.UpdatedAt, s.now()),
	}
}
