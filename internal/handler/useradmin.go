package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gwocadmin/internal/identity"
	"gwocadmin/internal/middleware"
	"gwocadmin/internal/useradmin"
)

// serviceVersion stamps the GET probe so a deployment can be checked for
// liveness and lineage.
const serviceVersion = "gwoc-user-admin-v3"

// UserAdminHandler handles the privileged user operations endpoint.
type UserAdminHandler struct {
	gate     *useradmin.Gate
	executor *useradmin.Executor
}

// NewUserAdminHandler creates a new user admin handler.
func NewUserAdminHandler(gate *useradmin.Gate, executor *useradmin.Executor) *UserAdminHandler {
	return &UserAdminHandler{gate: gate, executor: executor}
}

// Version handles GET /api/v1/user-admin
func (h *UserAdminHandler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version": serviceVersion,
		"ok":      true,
	})
}

// Execute handles POST /api/v1/user-admin
//
// Flow: verified caller from context, decode body, gate check, execute.
// Every stage fails fast; nothing retries.
func (h *UserAdminHandler) Execute(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var req useradmin.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: action")
		return
	}

	if err := h.gate.Check(r.Context(), caller, &req); err != nil {
		writeOpError(w, err)
		return
	}

	result, err := h.executor.Execute(r.Context(), &req)
	if err != nil {
		writeOpError(w, err)
		return
	}

	resp := map[string]any{"success": true}
	if result.UserID != "" {
		resp["user_id"] = result.UserID
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeOpError maps gate and executor errors to HTTP responses. Provider
// errors pass their message through verbatim.
func writeOpError(w http.ResponseWriter, err error) {
	if errors.Is(err, useradmin.ErrRoleUnresolvable) {
		writeError(w, http.StatusForbidden, "Could not verify your role")
		return
	}

	var forbidden *useradmin.ForbiddenError
	if errors.As(err, &forbidden) {
		writeError(w, http.StatusForbidden, forbidden.Reason)
		return
	}

	var invalid *useradmin.InvalidRequestError
	if errors.As(err, &invalid) {
		writeError(w, http.StatusBadRequest, invalid.Reason)
		return
	}

	var apiErr *identity.APIError
	if errors.As(err, &apiErr) {
		writeError(w, http.StatusBadRequest, apiErr.Message)
		return
	}

	log.Printf("user admin operation failed: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
