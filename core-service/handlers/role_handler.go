package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bcm-backend/core-service/services"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/permission"
	"bcm-backend/shared/utils/query"
	"bcm-backend/shared/utils/response"
)

type RoleHandler struct {
	roles *services.RoleService
}

func NewRoleHandler(roles *services.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// GetRoles retrieves the roles of the caller's organization
// @Summary Get all roles
// @Description Get roles with pagination, filtering, sorting and search
// @Tags roles
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name and description"
// @Param filters[is_system_role] query string false "Filter by system role flag (true, false)"
// @Param sort[field] query string false "Sort field (name, created_at, updated_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Page[models.Role]}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /roles [get]
func (h *RoleHandler) GetRoles(ctx *gin.Context) {
	p, ok := actor(ctx)
	if !ok {
		return
	}
	page, err := h.roles.List(ctx.Request.Context(), p, query.ParseQueryParams(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, page)
}

// GetRole retrieves a single role by ID
// @Summary Get role by ID
// @Tags roles
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Role}
// @Failure 400 {object} response.ErrorBody "Invalid role ID format"
// @Failure 404 {object} response.ErrorBody "Role not found"
// @Router /roles/{id} [get]
func (h *RoleHandler) GetRole(ctx *gin.Context) {
	p, id, ok := request(ctx, "role")
	if !ok {
		return
	}
	role, err := h.roles.Get(ctx.Request.Context(), p, id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, role)
}

// CreateRole creates a new role
// @Summary Create role
// @Description Role names are unique per organization. Every unknown permission id is reported.
// @Tags roles
// @Accept json
// @Produce json
// @Param role body services.RoleCreate true "Role data"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.Role}
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody "Role name already exists"
// @Failure 422 {object} response.ErrorBody "Unknown permission ids"
// @Router /roles [post]
func (h *RoleHandler) CreateRole(ctx *gin.Context) {
	p, ok := actor(ctx)
	if !ok {
		return
	}
	var in services.RoleCreate
	if !bind(ctx, &in) {
		return
	}
	role, err := h.roles.Create(ctx.Request.Context(), p, in)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.Created(ctx, role)
}

// UpdateRole updates an existing role
// @Summary Update role
// @Description Omitted permission_ids leaves the permission set untouched; [] clears it
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Param role body services.RoleUpdate true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Role}
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /roles/{id} [put]
func (h *RoleHandler) UpdateRole(ctx *gin.Context) {
	p, id, ok := request(ctx, "role")
	if !ok {
		return
	}
	var in services.RoleUpdate
	if !bind(ctx, &in) {
		return
	}
	role, err := h.roles.Update(ctx.Request.Context(), p, id, in)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, role)
}

// DeleteRole deletes a role
// @Summary Delete role
// @Description Detaches the role from users and permissions. System roles cannot be deleted.
// @Tags roles
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody "System role"
// @Router /roles/{id} [delete]
func (h *RoleHandler) DeleteRole(ctx *gin.Context) {
	p, id, ok := request(ctx, "role")
	if !ok {
		return
	}
	if err := h.roles.Delete(ctx.Request.Context(), p, id); err != nil {
		response.Error(ctx, err)
		return
	}
	response.Message(ctx, http.StatusOK, "Role deleted successfully")
}

// GetRolePermissions lists the permissions granted by a role
// @Summary Get role permissions
// @Tags roles
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.Permission}
// @Failure 404 {object} response.ErrorBody
// @Router /roles/{id}/permissions [get]
func (h *RoleHandler) GetRolePermissions(ctx *gin.Context) {
	p, id, ok := request(ctx, "role")
	if !ok {
		return
	}
	permissions, err := h.roles.Permissions(ctx.Request.Context(), p, id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, permissions)
}

// ReplaceRolePermissions replaces the permission set of a role
// @Summary Replace role permissions
// @Description An empty list clears every permission. Omitting permission_ids leaves them untouched.
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Param permissions body services.PermissionIDsInput true "Permission ids"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Role}
// @Failure 404 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody "Unknown permission ids"
// @Router /roles/{id}/permissions [put]
func (h *RoleHandler) ReplaceRolePermissions(ctx *gin.Context) {
	h.changePermissions(ctx, h.roles.ReplacePermissions)
}

// AddRolePermissions grants additional permissions to a role
// @Summary Add role permissions
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Param permissions body services.PermissionIDsInput true "Permission ids"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Role}
// @Failure 404 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody "Unknown permission ids"
// @Router /roles/{id}/permissions [post]
func (h *RoleHandler) AddRolePermissions(ctx *gin.Context) {
	h.changePermissions(ctx, h.roles.AddPermissions)
}

// RemoveRolePermissions revokes permissions from a role
// @Summary Remove role permissions
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Param permissions body services.PermissionIDsInput true "Permission ids"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Role}
// @Failure 404 {object} response.ErrorBody
// @Router /roles/{id}/permissions [delete]
func (h *RoleHandler) RemoveRolePermissions(ctx *gin.Context) {
	h.changePermissions(ctx, h.roles.RemovePermissions)
}

type permissionChange = func(ctx context.Context, actor permission.Principal, id uuid.UUID, permissionIDs *[]uuid.UUID) (*models.Role, error)

func (h *RoleHandler) changePermissions(ctx *gin.Context, change permissionChange) {
	p, id, ok := request(ctx, "role")
	if !ok {
		return
	}
	var in services.PermissionIDsInput
	if !bind(ctx, &in) {
		return
	}
	role, err := change(ctx.Request.Context(), p, id, in.PermissionIDs)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, role)
}
