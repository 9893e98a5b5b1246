package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/booking-api/internal/api/shared"
	"github.com/phrazzld/booking-api/internal/service"
)

// ServiceHandler serves the /services catalog resource.
type ServiceHandler struct {
	catalog service.CatalogService
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(catalog service.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// List handles GET /services.
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// Archive handles GET /services/archive.
func (h *ServiceHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *ServiceHandler) list(w http.ResponseWriter, r *http.Request, deleted bool) {
	pageReq, err := getPageRequest(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	page, err := h.catalog.ListServices(r.Context(), pageReq, deleted)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, mapPage(page, serviceToResponse))
}

// Get handles GET /services/{id}.
func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathInt64(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	svc, err := h.catalog.GetService(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, serviceToResponse(svc))
}

// Create handles POST /services.
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ServiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	svc, err := h.catalog.CreateService(r.Context(), toServiceInput(req))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, serviceToResponse(svc))
}

// Update handles PUT /services/{id}.
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathInt64(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req ServiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	svc, err := h.catalog.UpdateService(r.Context(), id, toServiceInput(req))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, serviceToResponse(svc))
}

// SoftDelete handles DELETE /services/{id}.
func (h *ServiceHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.catalog.SoftDeleteService)
}

// Restore handles PUT /services/{id}/restore. A live service answers 409.
func (h *ServiceHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.catalog.RestoreService)
}

// Delete handles DELETE /services/{id}/delete.
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.catalog.DeleteService)
}

func (h *ServiceHandler) byID(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id int64) error,
) {
	id, err := getPathInt64(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := op(r.Context(), id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithStatus(w, http.StatusNoContent)
}

func toServiceInput(req ServiceRequest) service.ServiceInput {
	return service.ServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active == nil || *req.Active,
	}
}
