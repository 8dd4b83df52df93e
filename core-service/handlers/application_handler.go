package handlers

import (
	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
)

type ApplicationHandler struct {
	applications *services.ApplicationService
}

func NewApplicationHandler(applications *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// GetApplications lists application records of the caller's organization
// @Summary List application records
// @Tags applications
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term"
// @Param filters[is_active] query string false "Filter by is_active"
// @Param filters[criticality] query string false "Filter by criticality"
// @Param filters[vendor_id] query string false "Filter by vendor_id"
// @Param filters[status] query string false "Filter by status"
// @Param sort[field] query string false "Sort field (name, criticality, status, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Page[models.Application]}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /applications [get]
func (h *ApplicationHandler) GetApplications(ctx *gin.Context) {
	handleList(ctx, h.applications.List)
}

// GetApplication retrieves a application by ID
// @Summary Get application by ID
// @Tags applications
// @Produce json
// @Param id path string true "application ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Application}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /applications/{id} [get]
func (h *ApplicationHandler) GetApplication(ctx *gin.Context) {
	handleGet(ctx, "application", h.applications.Get)
}

// CreateApplication creates a application
// @Summary Create application
// @Description Name unique per organization. vendor_id and app_owner_id must belong to the organization.
// @Tags applications
// @Accept json
// @Produce json
// @Param body body services.ApplicationCreate true "application data"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.Application}
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /applications [post]
func (h *ApplicationHandler) CreateApplication(ctx *gin.Context) {
	handleCreate(ctx, h.applications.Create)
}

// UpdateApplication updates a application
// @Summary Update application
// @Description Omitted fields are left untouched
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "application ID" format(uuid)
// @Param body body services.ApplicationUpdate true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Application}
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /applications/{id} [put]
func (h *ApplicationHandler) UpdateApplication(ctx *gin.Context) {
	handleUpdate(ctx, "application", h.applications.Update)
}

// DeleteApplication deletes a application
// @Summary Delete application
// @Description Soft delete: the application is marked inactive
// @Tags applications
// @Produce json
// @Param id path string true "application ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) DeleteApplication(ctx *gin.Context) {
	handleDelete(ctx, "application", "Application deleted successfully", h.applications.Delete)
}
