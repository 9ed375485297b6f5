package models

import "time"

// Contact request status values.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
)

// User represents a registered user. Emails are stored lowercased and are
// unique case-insensitively.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	PushToken    *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ContactRequest is the single edge between two users. It is created pending
// by the requester and becomes the accepted contact relationship in place.
// At most one edge exists per unordered pair.
type ContactRequest struct {
	ID          string     `json:"requestId"`
	RequesterID string     `json:"requesterId"`
	RecipientID string     `json:"recipientId"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`
}

// Contact is a user on the other end of an accepted edge, as seen by one side.
type Contact struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// LocationRecord is the single latest self-reported location of a user.
// The payload is stored as the client sent it and only parsed on read.
type LocationRecord struct {
	UserID    string
	Payload   string
	UpdatedAt time.Time
}
