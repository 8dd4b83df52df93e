package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
	"bcm-backend/shared/utils/query"
	"bcm-backend/shared/utils/response"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetUsers retrieves the users of the caller's organization
// @Summary Get all users
// @Description Get users with pagination, filtering, sorting and search
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across email, names and job title"
// @Param filters[is_active] query string false "Filter by active status (true, false)"
// @Param filters[department_id] query string false "Filter by department ID"
// @Param sort[field] query string false "Sort field (email, first_name, last_name, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Page[models.User]}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /users [get]
func (h *UserHandler) GetUsers(ctx *gin.Context) {
	p, ok := actor(ctx)
	if !ok {
		return
	}
	page, err := h.users.List(ctx.Request.Context(), p, query.ParseQueryParams(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, page)
}

// GetUser retrieves a single user by ID
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.User}
// @Failure 400 {object} response.ErrorBody "Invalid user ID format"
// @Failure 404 {object} response.ErrorBody "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(ctx *gin.Context) {
	p, id, ok := request(ctx, "user")
	if !ok {
		return
	}
	user, err := h.users.Get(ctx.Request.Context(), p, id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, user)
}

// CreateUser creates a user in the caller's organization
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.UserCreate true "User data"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.User}
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody "Email already exists in this organization"
// @Failure 422 {object} response.ErrorBody
// @Router /users [post]
func (h *UserHandler) CreateUser(ctx *gin.Context) {
	p, ok := actor(ctx)
	if !ok {
		return
	}
	var in services.UserCreate
	if !bind(ctx, &in) {
		return
	}
	user, err := h.users.Create(ctx.Request.Context(), p, in)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.Created(ctx, user)
}

// UpdateUser updates a user
// @Summary Update user
// @Description Omitted fields are left untouched; role_ids [] removes every role
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param user body services.UserUpdate true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.User}
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(ctx *gin.Context) {
	p, id, ok := request(ctx, "user")
	if !ok {
		return
	}
	var in services.UserUpdate
	if !bind(ctx, &in) {
		return
	}
	user, err := h.users.Update(ctx.Request.Context(), p, id, in)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, user)
}

// DeleteUser deactivates a user
// @Summary Deactivate user
// @Description Users are never hard deleted
// @Tags users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.User}
// @Failure 404 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody "Cannot deactivate own account"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(ctx *gin.Context) {
	p, id, ok := request(ctx, "user")
	if !ok {
		return
	}
	user, err := h.users.Deactivate(ctx.Request.Context(), p, id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, user)
}

// AssignRole assigns a role to a user
// @Summary Assign role to user
// @Description The role must belong to the user's organization
// @Tags users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param roleId path string true "Role ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.User}
// @Failure 404 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody "Role belongs to another organization"
// @Router /users/{id}/roles/{roleId} [post]
func (h *UserHandler) AssignRole(ctx *gin.Context) {
	p, id, ok := request(ctx, "user")
	if !ok {
		return
	}
	roleID, ok := pathID(ctx, "roleId", "role")
	if !ok {
		return
	}
	user, err := h.users.AssignRole(ctx.Request.Context(), p, id, roleID)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, user)
}

// RemoveRole removes a role from a user
// @Summary Remove role from user
// @Tags users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param roleId path string true "Role ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.User}
// @Failure 404 {object} response.ErrorBody
// @Router /users/{id}/roles/{roleId} [delete]
func (h *UserHandler) RemoveRole(ctx *gin.Context) {
	p, id, ok := request(ctx, "user")
	if !ok {
		return
	}
	roleID, ok := pathID(ctx, "roleId", "role")
	if !ok {
		return
	}
	user, err := h.users.RemoveRole(ctx.Request.Context(), p, id, roleID)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, user)
}

// GetUserPermissions returns the effective permissions of a user
// @Summary Get user permissions
// @Description Union of the permissions of every assigned role
// @Tags users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]string}
// @Failure 404 {object} response.ErrorBody
// @Router /users/{id}/permissions [get]
func (h *UserHandler) GetUserPermissions(ctx *gin.Context) {
	p, id, ok := request(ctx, "user")
	if !ok {
		return
	}
	names, err := h.users.EffectivePermissions(ctx.Request.Context(), p, id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, gin.H{"user_id": id, "permissions": names})
}
