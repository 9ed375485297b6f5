package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whereabouts-backend/internal/models"
	"whereabouts-backend/internal/repository"

	"github.com/google/uuid"
)

// ContactService handles the contact-relationship lifecycle: pending requests,
// acceptance, and removal with its permission-grant cascade.
type ContactService struct {
	contactStore    ContactStore
	userStore       UserStore
	permissionStore PermissionStore
}

// NewContactService creates a new contact service
func NewContactService(contactStore ContactStore, userStore UserStore, permissionStore PermissionStore) *ContactService {
	return &ContactService{
		contactStore:    contactStore,
		userStore:       userStore,
		permissionStore: permissionStore,
	}
}

// PendingRequest is a pending edge enriched with the other party's identity
type PendingRequest struct {
	RequestID string    `json:"requestId"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// RequestContact creates a pending edge from requester to the user behind
// recipientEmail. Returns the request and the resolved recipient.
func (s *ContactService) RequestContact(ctx context.Context, requesterID, recipientEmail string) (*models.ContactRequest, *models.User, error) {
	recipient, err := s.userStore.GetByEmail(ctx, recipientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: no user with that email", ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}

	if recipient.ID == requesterID {
		return nil, nil, fmt.Errorf("%w: cannot send a contact request to yourself", ErrInvalidArgument)
	}

	exists, err := s.contactStore.ExistsBetween(ctx, requesterID, recipient.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing relationship: %w", err)
	}
	if exists {
		return nil, nil, fmt.Errorf("%w: a relationship with this user already exists", ErrConflict)
	}

	req := &models.ContactRequest{
		ID:          uuid.New().String(),
		RequesterID: requesterID,
		RecipientID: recipient.ID,
		Status:      models.RequestPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.contactStore.CreateRequest(ctx, req); err != nil {
		// Two users requesting each other at once race on the pair's
		// unique index; the loser surfaces as a conflict.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, fmt.Errorf("%w: a relationship with this user already exists", ErrConflict)
		}
		return nil, nil, fmt.Errorf("failed to create contact request: %w", err)
	}

	return req, recipient, nil
}

// AcceptRequest transitions a pending request to accepted. Only the recipient
// may accept; anyone else sees the request as not found.
func (s *ContactService) AcceptRequest(ctx context.Context, recipientID, requestID string) (*models.ContactRequest, error) {
	req, err := s.getPendingInRole(ctx, requestID, recipientID, false)
	if err != nil {
		return nil, err
	}

	acceptedAt := time.Now().UTC()
	if err := s.contactStore.Accept(ctx, requestID, acceptedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: contact request", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to accept contact request: %w", err)
	}

	req.Status = models.RequestAccepted
	req.AcceptedAt = &acceptedAt
	return req, nil
}

// DeclineRequest deletes a pending request; only the recipient may decline
func (s *ContactService) DeclineRequest(ctx context.Context, recipientID, requestID string) error {
	if _, err := s.getPendingInRole(ctx, requestID, recipientID, false); err != nil {
		return err
	}
	return s.deletePending(ctx, requestID)
}

// CancelRequest deletes a pending request; only the requester may cancel
func (s *ContactService) CancelRequest(ctx context.Context, requesterID, requestID string) error {
	if _, err := s.getPendingInRole(ctx, requestID, requesterID, true); err != nil {
		return err
	}
	return s.deletePending(ctx, requestID)
}

// RemoveContact deletes the accepted edge between the two users and cascades
// deletion of both directions' permission grants. Removing an already-removed
// pair fails with ErrNotFound and leaves no grants behind.
func (s *ContactService) RemoveContact(ctx context.Context, userID, otherID string) error {
	if err := s.contactStore.DeleteAccepted(ctx, userID, otherID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: contact", ErrNotFound)
		}
		return fmt.Errorf("failed to remove contact: %w", err)
	}

	if err := s.permissionStore.DeleteBetween(ctx, userID, otherID); err != nil {
		return fmt.Errorf("failed to remove permission grants: %w", err)
	}

	return nil
}

// ListContacts returns all users in an accepted edge with userID
func (s *ContactService) ListContacts(ctx context.Context, userID string) ([]*models.Contact, error) {
	contacts, err := s.contactStore.ListContacts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// IsContact reports whether a and b are accepted contacts. Symmetric.
func (s *ContactService) IsContact(ctx context.Context, a, b string) (bool, error) {
	ok, err := s.contactStore.AreContacts(ctx, a, b)
	if err != nil {
		return false, fmt.Errorf("failed to check contact status: %w", err)
	}
	return ok, nil
}

// ListPendingRequests returns the user's incoming and outgoing pending
// requests, each enriched with the other party's identity
func (s *ContactService) ListPendingRequests(ctx context.Context, userID string) (incoming, outgoing []*PendingRequest, err error) {
	in, err := s.contactStore.ListIncoming(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list incoming requests: %w", err)
	}
	out, err := s.contactStore.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list outgoing requests: %w", err)
	}

	incoming = make([]*PendingRequest, 0, len(in))
	for _, req := range in {
		enriched, err := s.enrich(ctx, req, req.RequesterID)
		if err != nil {
			return nil, nil, err
		}
		incoming = append(incoming, enriched)
	}

	outgoing = make([]*PendingRequest, 0, len(out))
	for _, req := range out {
		enriched, err := s.enrich(ctx, req, req.RecipientID)
		if err != nil {
			return nil, nil, err
		}
		outgoing = append(outgoing, enriched)
	}

	return incoming, outgoing, nil
}

// getPendingInRole fetches a pending request and verifies the calling user
// holds the expected role. Role mismatches report not-found rather than
// forbidden so request IDs leak nothing to other users.
func (s *ContactService) getPendingInRole(ctx context.Context, requestID, userID string, asRequester bool) (*models.ContactRequest, error) {
	req, err := s.contactStore.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: contact request", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contact request: %w", err)
	}

	if req.Status != models.RequestPending {
		return nil, fmt.Errorf("%w: contact request", ErrNotFound)
	}

	expected := req.RecipientID
	if asRequester {
		expected = req.RequesterID
	}
	if expected != userID {
		return nil, fmt.Errorf("%w: contact request", ErrNotFound)
	}

	return req, nil
}

func (s *ContactService) deletePending(ctx context.Context, requestID string) error {
	if err := s.contactStore.DeletePending(ctx, requestID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: contact request", ErrNotFound)
		}
		return fmt.Errorf("failed to delete contact request: %w", err)
	}
	return nil
}

func (s *ContactService) enrich(ctx context.Context, req *models.ContactRequest, otherID string) (*PendingRequest, error) {
	other, err := s.userStore.GetByID(ctx, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve request user: %w", err)
	}
	return &PendingRequest{
		RequestID: req.ID,
		UserID:    other.ID,
		Email:     other.Email,
		Name:      other.Name,
		CreatedAt: req.CreatedAt,
	}, nil
}
