package handlers

import (
	"encoding/json"
	"net/http"

	"whereabouts-backend/internal/middleware"
	"whereabouts-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ContactHandler handles contact-relationship HTTP requests
type ContactHandler struct {
	contactService    *services.ContactService
	userService       *services.UserService
	permissionService *services.PermissionService
	wsHub             *services.WSHub
	push              *services.PushNotifier
}

// NewContactHandler creates a new contact handler
func NewContactHandler(
	contactService *services.ContactService,
	userService *services.UserService,
	permissionService *services.PermissionService,
	wsHub *services.WSHub,
	push *services.PushNotifier,
) *ContactHandler {
	return &ContactHandler{
		contactService:    contactService,
		userService:       userService,
		permissionService: permissionService,
		wsHub:             wsHub,
		push:              push,
	}
}

// SendRequestBody represents the request body for sending a contact request
type SendRequestBody struct {
	Email string `json:"email"`
}

// SendRequest handles POST /api/contacts/request
func (h *ContactHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var body SendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Email == "" {
		respondError(w, "email is required", http.StatusBadRequest)
		return
	}

	req, recipient, err := h.contactService.RequestContact(ctx, userID, body.Email)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to send contact request")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("recipient_id", recipient.ID).
		Str("request_id", req.ID).
		Msg("Contact request sent")

	// Notify the recipient if they are online, and over push otherwise.
	requester, err := h.userService.GetByID(ctx, userID)
	if err == nil {
		if h.wsHub.IsOnline(recipient.ID) {
			h.wsHub.NotifyContactRequest(recipient.ID, req.ID, requester.Name)
		} else if recipient.PushToken != nil {
			go h.push.NotifyContactRequest(*recipient.PushToken, requester.Name)
		}
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"requestId": req.ID,
		"email":     recipient.Email,
		"name":      recipient.Name,
		"status":    req.Status,
		"createdAt": req.CreatedAt,
	})
}

// ListRequests handles GET /api/contacts/requests
func (h *ContactHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	incoming, outgoing, err := h.contactService.ListPendingRequests(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list pending requests")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"incoming": incoming,
		"outgoing": outgoing,
	})
}

// AcceptRequest handles POST /api/contacts/requests/{request_id}/accept
func (h *ContactHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID := chi.URLParam(r, "request_id")

	req, err := h.contactService.AcceptRequest(ctx, userID, requestID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("request_id", requestID).
			Msg("Failed to accept contact request")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("request_id", requestID).
		Msg("Contact request accepted")

	if accepter, err := h.userService.GetByID(ctx, userID); err == nil {
		h.wsHub.NotifyContactAccepted(req.RequesterID, userID, accepter.Name)
	}

	requester, err := h.userService.GetByID(ctx, req.RequesterID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":    requester.ID,
		"email": requester.Email,
		"name":  requester.Name,
	})
}

// DeclineRequest handles POST /api/contacts/requests/{request_id}/decline
func (h *ContactHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID := chi.URLParam(r, "request_id")

	if err := h.contactService.DeclineRequest(ctx, userID, requestID); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("request_id", requestID).
		Msg("Contact request declined")

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CancelRequest handles POST /api/contacts/requests/{request_id}/cancel
func (h *ContactHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID := chi.URLParam(r, "request_id")

	if err := h.contactService.CancelRequest(ctx, userID, requestID); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("request_id", requestID).
		Msg("Contact request cancelled")

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListContacts handles GET /api/contacts
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	contacts, err := h.contactService.ListContacts(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list contacts")
		respondServiceError(w, err)
		return
	}

	entries := make([]map[string]interface{}, 0, len(contacts))
	for _, c := range contacts {
		granted, err := h.permissionService.GetLevel(ctx, userID, c.ID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		received, err := h.permissionService.GetLevel(ctx, c.ID, userID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		entries = append(entries, map[string]interface{}{
			"id":                 c.ID,
			"email":              c.Email,
			"name":               c.Name,
			"permissionGranted":  granted,
			"permissionReceived": received,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"contacts": entries})
}

// RemoveContact handles DELETE /api/contacts/{contact_id}
func (h *ContactHandler) RemoveContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	contactID := chi.URLParam(r, "contact_id")

	if err := h.contactService.RemoveContact(ctx, userID, contactID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("contact_id", contactID).
			Msg("Failed to remove contact")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("contact_id", contactID).
		Msg("Contact removed")

	h.wsHub.NotifyContactRemoved(contactID, userID)

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
