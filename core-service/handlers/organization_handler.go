package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
	"bcm-backend/shared/utils/response"
)

type OrganizationHandler struct {
	organizations *services.OrganizationService
}

func NewOrganizationHandler(organizations *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{organizations: organizations}
}

// GetOrganizations lists the organizations visible to the caller
// @Summary Get organizations
// @Description Only the caller's own organization is returned
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.Organization}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /organizations [get]
func (h *OrganizationHandler) GetOrganizations(ctx *gin.Context) {
	p, ok := actor(ctx)
	if !ok {
		return
	}
	orgs, err := h.organizations.List(ctx.Request.Context(), p)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, orgs)
}

// GetOrganization retrieves an organization by ID
// @Summary Get organization by ID
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Organization}
// @Failure 400 {object} response.ErrorBody "Invalid organization ID format"
// @Failure 404 {object} response.ErrorBody "Organization not found"
// @Router /organizations/{id} [get]
func (h *OrganizationHandler) GetOrganization(ctx *gin.Context) {
	p, id, ok := request(ctx, "organization")
	if !ok {
		return
	}
	org, err := h.organizations.Get(ctx.Request.Context(), p, id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, org)
}

// CreateOrganization creates an organization and its predefined roles
// @Summary Create organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body services.OrganizationCreate true "Organization data"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.Organization}
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody "Organization name already exists"
// @Failure 422 {object} response.ErrorBody
// @Router /organizations [post]
func (h *OrganizationHandler) CreateOrganization(ctx *gin.Context) {
	p, ok := actor(ctx)
	if !ok {
		return
	}
	var in services.OrganizationCreate
	if !bind(ctx, &in) {
		return
	}
	org, err := h.organizations.Create(ctx.Request.Context(), p, in)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.Created(ctx, org)
}

// UpdateOrganization updates the caller's organization
// @Summary Update organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param organization body services.OrganizationUpdate true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Organization}
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /organizations/{id} [put]
func (h *OrganizationHandler) UpdateOrganization(ctx *gin.Context) {
	p, id, ok := request(ctx, "organization")
	if !ok {
		return
	}
	var in services.OrganizationUpdate
	if !bind(ctx, &in) {
		return
	}
	org, err := h.organizations.Update(ctx.Request.Context(), p, id, in)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, org)
}
