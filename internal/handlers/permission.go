package handlers

import (
	"encoding/json"
	"net/http"

	"whereabouts-backend/internal/middleware"
	"whereabouts-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PermissionHandler handles precision-grant HTTP requests
type PermissionHandler struct {
	permissionService *services.PermissionService
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(permissionService *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{
		permissionService: permissionService,
	}
}

// SetPermissionRequest represents the request body for setting a grant
type SetPermissionRequest struct {
	Level string `json:"level"`
}

// GetPermission handles GET /api/contacts/{contact_id}/permission
func (h *PermissionHandler) GetPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	contactID := chi.URLParam(r, "contact_id")

	granted, received, err := h.permissionService.GetPair(ctx, userID, contactID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"permissionGranted":  granted,
		"permissionReceived": received,
	})
}

// SetPermission handles PUT /api/contacts/{contact_id}/permission
func (h *PermissionHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	contactID := chi.URLParam(r, "contact_id")

	var req SetPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	level, err := h.permissionService.SetLevel(ctx, userID, contactID, req.Level)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("contact_id", contactID).
			Str("level", req.Level).
			Msg("Failed to set permission")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("contact_id", contactID).
		Str("level", string(level)).
		Msg("Permission updated")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":           true,
		"permissionGranted": level,
	})
}

// ListLevels handles GET /api/permission-levels
func (h *PermissionHandler) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, def := h.permissionService.Levels()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"levels":  levels,
		"default": def,
	})
}
