package handler

import (
	"log"
	"net/http"

	"gwocadmin/internal/middleware"
	"gwocadmin/internal/profile"
	"gwocadmin/internal/useradmin"
)

// UsersHandler serves read access to the profile store for the admin UI.
type UsersHandler struct {
	gate     *useradmin.Gate
	profiles *profile.Manager
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(gate *useradmin.Gate, profiles *profile.Manager) *UsersHandler {
	return &UsersHandler{gate: gate, profiles: profiles}
}

// List handles GET /api/v1/users
// Restricted to admin callers.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.gate.RequireAdmin(r.Context(), caller); err != nil {
		writeOpError(w, err)
		return
	}

	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		log.Printf("failed to list profiles: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": profiles,
		"count": len(profiles),
	})
}
