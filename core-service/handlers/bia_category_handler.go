package handlers

import (
	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
)

type BIACategoryHandler struct {
	categories *services.BIACategoryService
}

func NewBIACategoryHandler(categories *services.BIACategoryService) *BIACategoryHandler {
	return &BIACategoryHandler{categories: categories}
}

// GetBIACategories lists BIA category records of the caller's organization
// @Summary List BIA category records
// @Tags bia
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term"
// @Param filters[is_active] query string false "Filter by is_active"
// @Param sort[field] query string false "Sort field (name, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Page[models.BIACategory]}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /bia/categories [get]
func (h *BIACategoryHandler) GetBIACategories(ctx *gin.Context) {
	handleList(ctx, h.categories.List)
}

// GetBIACategory retrieves a BIA category by ID
// @Summary Get BIA category by ID
// @Tags bia
// @Produce json
// @Param id path string true "BIA category ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.BIACategory}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /bia/categories/{id} [get]
func (h *BIACategoryHandler) GetBIACategory(ctx *gin.Context) {
	handleGet(ctx, "bia category", h.categories.Get)
}

// CreateBIACategory creates a BIA category
// @Summary Create BIA category
// @Description Name unique per organization.
// @Tags bia
// @Accept json
// @Produce json
// @Param body body services.BIACategoryCreate true "BIA category data"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.BIACategory}
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /bia/categories [post]
func (h *BIACategoryHandler) CreateBIACategory(ctx *gin.Context) {
	handleCreate(ctx, h.categories.Create)
}

// UpdateBIACategory updates a BIA category
// @Summary Update BIA category
// @Description Omitted fields are left untouched
// @Tags bia
// @Accept json
// @Produce json
// @Param id path string true "BIA category ID" format(uuid)
// @Param body body services.BIACategoryUpdate true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.BIACategory}
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /bia/categories/{id} [put]
func (h *BIACategoryHandler) UpdateBIACategory(ctx *gin.Context) {
	handleUpdate(ctx, "bia category", h.categories.Update)
}

// DeleteBIACategory deletes a BIA category
// @Summary Delete BIA category
// @Description Soft delete: the category is marked inactive
// @Tags bia
// @Produce json
// @Param id path string true "BIA category ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Router /bia/categories/{id} [delete]
func (h *BIACategoryHandler) DeleteBIACategory(ctx *gin.Context) {
	handleDelete(ctx, "bia category", "BIA category deleted successfully", h.categories.Delete)
}
