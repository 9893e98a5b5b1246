package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/booking-api/internal/api/shared"
	"github.com/phrazzld/booking-api/internal/service"
)

// RoleHandler serves the /roles resource.
type RoleHandler struct {
	roles service.RoleService
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(roles service.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// List handles GET /roles.
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.ListRoles(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	resp := make([]RoleResponse, len(roles))
	for i := range roles {
		resp[i] = roleToResponse(&roles[i])
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Create handles POST /roles. A taken name answers 409.
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	role, err := h.roles.CreateRole(r.Context(), req.Name, req.Description, toPermissionSet(req.Permissions))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, roleToResponse(role))
}

// Get handles GET /roles/{id}.
func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	role, err := h.roles.GetRole(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, roleToResponse(role))
}

// GetByName handles GET /roles/by-name/{name}.
func (h *RoleHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	role, err := h.roles.GetRoleByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, roleToResponse(role))
}
