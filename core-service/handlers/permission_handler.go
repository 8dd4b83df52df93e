package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
	"bcm-backend/shared/utils/query"
	"bcm-backend/shared/utils/response"
)

type PermissionHandler struct {
	permissions *services.PermissionService
}

func NewPermissionHandler(permissions *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

// GetPermissions lists the global permission registry
// @Summary Get all permissions
// @Description Permissions are global reference data named resource:action
// @Tags permissions
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name and description"
// @Param sort[field] query string false "Sort field (name, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Page[models.Permission]}
// @Failure 403 {object} response.ErrorBody
// @Router /permissions [get]
func (h *PermissionHandler) GetPermissions(ctx *gin.Context) {
	page, err := h.permissions.List(ctx.Request.Context(), query.ParseQueryParams(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, page)
}

// GetPermission retrieves a permission by ID
// @Summary Get permission by ID
// @Tags permissions
// @Produce json
// @Param id path string true "Permission ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Permission}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /permissions/{id} [get]
func (h *PermissionHandler) GetPermission(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "permission")
	if !ok {
		return
	}
	permission, err := h.permissions.Get(ctx.Request.Context(), id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, permission)
}
