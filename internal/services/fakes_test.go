package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"whereabouts-backend/internal/models"
	"whereabouts-backend/internal/repository"
)

// In-memory store fakes backing the service tests. They mirror the contracts
// of the pgx repositories, including the sentinel errors and the uniqueness
// constraint on the unordered contact pair.

type memUserStore struct {
	users map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("email already registered: %w", repository.ErrDuplicate)
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	cp := *user
	return &cp, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
}

func (s *memUserStore) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	if user, ok := s.users[userID]; ok {
		user.PushToken = pushToken
	}
	return nil
}

type memContactStore struct {
	requests map[string]*models.ContactRequest
	users    *memUserStore
}

func newMemContactStore(users *memUserStore) *memContactStore {
	return &memContactStore{
		requests: make(map[string]*models.ContactRequest),
		users:    users,
	}
}

func (s *memContactStore) CreateRequest(ctx context.Context, req *models.ContactRequest) error {
	exists, _ := s.ExistsBetween(ctx, req.RequesterID, req.RecipientID)
	if exists {
		return fmt.Errorf("relationship already exists: %w", repository.ErrDuplicate)
	}
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *memContactStore) GetRequestByID(_ context.Context, id string) (*models.ContactRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("contact request: %w", repository.ErrNotFound)
	}
	cp := *req
	return &cp, nil
}

func (s *memContactStore) ExistsBetween(_ context.Context, a, b string) (bool, error) {
	for _, req := range s.requests {
		if samePair(req, a, b) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memContactStore) Accept(_ context.Context, id string, acceptedAt time.Time) error {
	req, ok := s.requests[id]
	if !ok || req.Status != models.RequestPending {
		return fmt.Errorf("pending contact request: %w", repository.ErrNotFound)
	}
	req.Status = models.RequestAccepted
	req.AcceptedAt = &acceptedAt
	return nil
}

func (s *memContactStore) DeletePending(_ context.Context, id string) error {
	req, ok := s.requests[id]
	if !ok || req.Status != models.RequestPending {
		return fmt.Errorf("pending contact request: %w", repository.ErrNotFound)
	}
	delete(s.requests, id)
	return nil
}

func (s *memContactStore) DeleteAccepted(_ context.Context, a, b string) error {
	for id, req := range s.requests {
		if req.Status == models.RequestAccepted && samePair(req, a, b) {
			delete(s.requests, id)
			return nil
		}
	}
	return fmt.Errorf("contact: %w", repository.ErrNotFound)
}

func (s *memContactStore) AreContacts(_ context.Context, a, b string) (bool, error) {
	for _, req := range s.requests {
		if req.Status == models.RequestAccepted && samePair(req, a, b) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memContactStore) ListContacts(ctx context.Context, userID string) ([]*models.Contact, error) {
	var contacts []*models.Contact
	for _, req := range s.requests {
		if req.Status != models.RequestAccepted {
			continue
		}
		var otherID string
		switch userID {
		case req.RequesterID:
			otherID = req.RecipientID
		case req.RecipientID:
			otherID = req.RequesterID
		default:
			continue
		}
		other, err := s.users.GetByID(ctx, otherID)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, &models.Contact{
			ID:        other.ID,
			Email:     other.Email,
			Name:      other.Name,
			CreatedAt: other.CreatedAt,
		})
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].ID < contacts[j].ID })
	return contacts, nil
}

func (s *memContactStore) ListIncoming(_ context.Context, userID string) ([]*models.ContactRequest, error) {
	return s.listPending(func(req *models.ContactRequest) bool { return req.RecipientID == userID }), nil
}

func (s *memContactStore) ListOutgoing(_ context.Context, userID string) ([]*models.ContactRequest, error) {
	return s.listPending(func(req *models.ContactRequest) bool { return req.RequesterID == userID }), nil
}

func (s *memContactStore) listPending(match func(*models.ContactRequest) bool) []*models.ContactRequest {
	var out []*models.ContactRequest
	for _, req := range s.requests {
		if req.Status == models.RequestPending && match(req) {
			cp := *req
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func samePair(req *models.ContactRequest, a, b string) bool {
	return (req.RequesterID == a && req.RecipientID == b) ||
		(req.RequesterID == b && req.RecipientID == a)
}

type memPermissionStore struct {
	grants map[string]models.PrecisionLevel
}

func newMemPermissionStore() *memPermissionStore {
	return &memPermissionStore{grants: make(map[string]models.PrecisionLevel)}
}

func grantKey(granterID, granteeID string) string {
	return granterID + "\x00" + granteeID
}

func (s *memPermissionStore) Get(_ context.Context, granterID, granteeID string) (models.PrecisionLevel, error) {
	level, ok := s.grants[grantKey(granterID, granteeID)]
	if !ok {
		return "", fmt.Errorf("permission grant: %w", repository.ErrNotFound)
	}
	return level, nil
}

func (s *memPermissionStore) Upsert(_ context.Context, granterID, granteeID string, level models.PrecisionLevel) error {
	s.grants[grantKey(granterID, granteeID)] = level
	return nil
}

func (s *memPermissionStore) DeleteBetween(_ context.Context, a, b string) error {
	delete(s.grants, grantKey(a, b))
	delete(s.grants, grantKey(b, a))
	return nil
}

type memLocationStore struct {
	records map[string]*models.LocationRecord
}

func newMemLocationStore() *memLocationStore {
	return &memLocationStore{records: make(map[string]*models.LocationRecord)}
}

func (s *memLocationStore) Upsert(_ context.Context, rec *models.LocationRecord) error {
	cp := *rec
	s.records[rec.UserID] = &cp
	return nil
}

func (s *memLocationStore) Get(_ context.Context, userID string) (*models.LocationRecord, error) {
	rec, ok := s.records[userID]
	if !ok {
		return nil, fmt.Errorf("location record: %w", repository.ErrNotFound)
	}
	cp := *rec
	return &cp, nil
}
