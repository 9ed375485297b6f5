package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"whereabouts-backend/internal/middleware"
	"whereabouts-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// LocationHandler handles location HTTP requests
type LocationHandler struct {
	locationService *services.LocationService
	contactService  *services.ContactService
	wsHub           *services.WSHub
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(
	locationService *services.LocationService,
	contactService *services.ContactService,
	wsHub *services.WSHub,
) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		contactService:  contactService,
		wsHub:           wsHub,
	}
}

// PublishRequest represents the request body for publishing a location
type PublishRequest struct {
	Payload string `json:"payload"`
}

// Publish handles POST /api/location
func (h *LocationHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.locationService.Publish(ctx, userID, req.Payload)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to publish location")
		respondServiceError(w, err)
		return
	}

	log.Debug().Str("user_id", userID).Msg("Location published")

	// Push the update to online contacts, each view filtered for its viewer.
	go h.fanOut(userID)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"timestamp": rec.UpdatedAt,
	})
}

// GetOwn handles GET /api/location
func (h *LocationHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	rec, err := h.locationService.GetOwn(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get own location")
		respondServiceError(w, err)
		return
	}

	if rec == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"location": nil})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"location": map[string]interface{}{
			"payload":    rec.Payload,
			"updated_at": rec.UpdatedAt,
		},
	})
}

// GetContactLocation handles GET /api/contacts/{contact_id}/location
func (h *LocationHandler) GetContactLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	contactID := chi.URLParam(r, "contact_id")

	result, err := h.locationService.GetContactLocation(ctx, userID, contactID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetAllContactLocations handles GET /api/contacts/locations
func (h *LocationHandler) GetAllContactLocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	contacts, err := h.locationService.GetAllContactLocations(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get contact locations")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"contacts": contacts})
}

// fanOut pushes the owner's fresh location to every online contact over the
// websocket hub. Uses a background context: the HTTP request has already
// been answered.
func (h *LocationHandler) fanOut(ownerID string) {
	ctx := context.Background()

	contacts, err := h.contactService.ListContacts(ctx, ownerID)
	if err != nil {
		log.Error().Err(err).Str("user_id", ownerID).Msg("Failed to list contacts for fan-out")
		return
	}

	for _, contact := range contacts {
		if !h.wsHub.IsOnline(contact.ID) {
			continue
		}
		view, err := h.locationService.GetContactLocation(ctx, contact.ID, ownerID)
		if err != nil {
			log.Error().
				Err(err).
				Str("viewer_id", contact.ID).
				Str("owner_id", ownerID).
				Msg("Failed to build location view for fan-out")
			continue
		}
		h.wsHub.NotifyLocationUpdate(contact.ID, ownerID, view)
	}
}
