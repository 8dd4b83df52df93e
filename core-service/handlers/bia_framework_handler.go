package handlers

import (
	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
)

type BIAFrameworkHandler struct {
	frameworks *services.BIAFrameworkService
}

func NewBIAFrameworkHandler(frameworks *services.BIAFrameworkService) *BIAFrameworkHandler {
	return &BIAFrameworkHandler{frameworks: frameworks}
}

// GetBIAFrameworks lists BIA framework records of the caller's organization
// @Summary List BIA framework records
// @Tags bia
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term"
// @Param filters[is_active] query string false "Filter by is_active"
// @Param sort[field] query string false "Sort field (name, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Page[models.BIAFramework]}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /bia/frameworks [get]
func (h *BIAFrameworkHandler) GetBIAFrameworks(ctx *gin.Context) {
	handleList(ctx, h.frameworks.List)
}

// GetBIAFramework retrieves a BIA framework by ID
// @Summary Get BIA framework by ID
// @Tags bia
// @Produce json
// @Param id path string true "BIA framework ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.BIAFramework}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /bia/frameworks/{id} [get]
func (h *BIAFrameworkHandler) GetBIAFramework(ctx *gin.Context) {
	handleGet(ctx, "bia framework", h.frameworks.Get)
}

// CreateBIAFramework creates a BIA framework
// @Summary Create BIA framework
// @Description Parameter weightages must sum to 100. Every unknown criterion id is reported.
// @Tags bia
// @Accept json
// @Produce json
// @Param body body services.BIAFrameworkCreate true "BIA framework data"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.BIAFramework}
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /bia/frameworks [post]
func (h *BIAFrameworkHandler) CreateBIAFramework(ctx *gin.Context) {
	handleCreate(ctx, h.frameworks.Create)
}

// UpdateBIAFramework updates a BIA framework
// @Summary Update BIA framework
// @Description Supplied parameters or rtos replace the existing ones
// @Tags bia
// @Accept json
// @Produce json
// @Param id path string true "BIA framework ID" format(uuid)
// @Param body body services.BIAFrameworkUpdate true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.BIAFramework}
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /bia/frameworks/{id} [put]
func (h *BIAFrameworkHandler) UpdateBIAFramework(ctx *gin.Context) {
	handleUpdate(ctx, "bia framework", h.frameworks.Update)
}

// DeleteBIAFramework deletes a BIA framework
// @Summary Delete BIA framework
// @Description Deletes the framework with its parameters and RTO options
// @Tags bia
// @Produce json
// @Param id path string true "BIA framework ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Router /bia/frameworks/{id} [delete]
func (h *BIAFrameworkHandler) DeleteBIAFramework(ctx *gin.Context) {
	handleDelete(ctx, "bia framework", "BIA framework deleted successfully", h.frameworks.Delete)
}
