package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/response"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles user authentication
// @Summary User login
// @Description Authenticate with email and password. organization_id is required when the email exists in several organizations.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginRequest true "Login credentials"
// @Success 200 {object} response.Envelope{data=services.LoginResponse}
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody "Invalid credentials"
// @Failure 403 {object} response.ErrorBody "Inactive user"
// @Failure 422 {object} response.ErrorBody
// @Router /auth/login [post]
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req services.LoginRequest
	if !bind(ctx, &req) {
		return
	}

	result, err := h.auth.Login(ctx.Request.Context(), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, result)
}

// Logout revokes the presented access token
// @Summary User logout
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.ErrorBody
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(ctx *gin.Context) {
	claims, ok := auth.ClaimsFromContext(ctx.Request.Context())
	if !ok {
		response.Error(ctx, apperrors.Unauthenticated("User not authenticated"))
		return
	}
	if err := h.auth.Logout(ctx.Request.Context(), claims); err != nil {
		response.Error(ctx, err)
		return
	}
	response.Message(ctx, http.StatusOK, "Logged out successfully")
}

// ChangePassword changes the caller's password after verifying the current one
// @Summary Change password
// @Description Change the caller's password. The presented token is revoked on success.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.ChangePasswordRequest true "Password change data"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody "Current password is incorrect"
// @Failure 422 {object} response.ErrorBody
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	p, ok := actor(ctx)
	if !ok {
		return
	}
	var req services.ChangePasswordRequest
	if !bind(ctx, &req) {
		return
	}
	claims, _ := auth.ClaimsFromContext(ctx.Request.Context())
	if err := h.auth.ChangePassword(ctx.Request.Context(), p, claims, req); err != nil {
		response.Error(ctx, err)
		return
	}
	response.Message(ctx, http.StatusOK, "Password changed successfully")
}

// Me returns the authenticated principal
// @Summary Current user
// @Description Roles and effective permissions of the caller
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Me}
// @Failure 401 {object} response.ErrorBody
// @Router /auth/me [get]
func (h *AuthHandler) Me(ctx *gin.Context) {
	p, ok := actor(ctx)
	if !ok {
		return
	}
	response.OK(ctx, http.StatusOK, h.auth.Describe(p))
}
