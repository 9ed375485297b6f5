package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message pushed to a connected client
type WSMessage struct {
	Type      string      `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Name      string      `json:"name,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections, one per user
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a new WebSocket connection for a user
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Close existing connection if any
	if existingConn, exists := h.connections[userID]; exists {
		existingConn.Close()
	}

	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a WebSocket connection for a user
func (h *WSHub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[userID]; exists {
		conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	conn, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// NotifyContactRequest notifies the recipient of a new pending request
func (h *WSHub) NotifyContactRequest(recipientID, requestID, fromName string) {
	message := WSMessage{
		Type:      "contact_request",
		RequestID: requestID,
		Name:      fromName,
	}
	if err := h.SendToUser(recipientID, message); err != nil {
		log.Debug().
			Err(err).
			Str("user_id", recipientID).
			Msg("Failed to push contact request notification")
	}
}

// NotifyContactAccepted notifies the requester that their request was accepted
func (h *WSHub) NotifyContactAccepted(requesterID, byUserID, byName string) {
	message := WSMessage{
		Type:   "contact_accepted",
		UserID: byUserID,
		Name:   byName,
	}
	if err := h.SendToUser(requesterID, message); err != nil {
		log.Debug().
			Err(err).
			Str("user_id", requesterID).
			Msg("Failed to push contact accepted notification")
	}
}

// NotifyContactRemoved notifies the other party that the relationship ended
func (h *WSHub) NotifyContactRemoved(otherID, byUserID string) {
	message := WSMessage{
		Type:   "contact_removed",
		UserID: byUserID,
	}
	if err := h.SendToUser(otherID, message); err != nil {
		log.Debug().
			Err(err).
			Str("user_id", otherID).
			Msg("Failed to push contact removed notification")
	}
}

// NotifyLocationUpdate pushes an owner's freshly published location to one
// online contact. The view must already be filtered for that viewer.
func (h *WSHub) NotifyLocationUpdate(viewerID, ownerID string, view interface{}) {
	message := WSMessage{
		Type:   "location_update",
		UserID: ownerID,
		Data:   view,
	}
	if err := h.SendToUser(viewerID, message); err != nil {
		log.Debug().
			Err(err).
			Str("user_id", viewerID).
			Msg("Failed to push location update")
	}
}
