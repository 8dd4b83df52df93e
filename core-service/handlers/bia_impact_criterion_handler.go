package handlers

import (
	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
)

type BIAImpactCriterionHandler struct {
	criteria *services.BIAImpactCriterionService
}

func NewBIAImpactCriterionHandler(criteria *services.BIAImpactCriterionService) *BIAImpactCriterionHandler {
	return &BIAImpactCriterionHandler{criteria: criteria}
}

// GetBIAImpactCriteria lists BIA impact criterion records of the caller's organization
// @Summary List BIA impact criterion records
// @Tags bia
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term"
// @Param filters[is_active] query string false "Filter by is_active"
// @Param filters[bia_category_id] query string false "Filter by bia_category_id"
// @Param filters[rating_type] query string false "Filter by rating_type"
// @Param sort[field] query string false "Sort field (name, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Page[models.BIAImpactCriterion]}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /bia/impact-criteria [get]
func (h *BIAImpactCriterionHandler) GetBIAImpactCriteria(ctx *gin.Context) {
	handleList(ctx, h.criteria.List)
}

// GetBIAImpactCriterion retrieves a BIA impact criterion by ID
// @Summary Get BIA impact criterion by ID
// @Tags bia
// @Produce json
// @Param id path string true "BIA impact criterion ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.BIAImpactCriterion}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /bia/impact-criteria/{id} [get]
func (h *BIAImpactCriterionHandler) GetBIAImpactCriterion(ctx *gin.Context) {
	handleGet(ctx, "bia impact criterion", h.criteria.Get)
}

// CreateBIAImpactCriterion creates a BIA impact criterion
// @Summary Create BIA impact criterion
// @Description At least one level. QUANTITATIVE levels need a min or max value.
// @Tags bia
// @Accept json
// @Produce json
// @Param body body services.BIAImpactCriterionCreate true "BIA impact criterion data"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.BIAImpactCriterion}
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /bia/impact-criteria [post]
func (h *BIAImpactCriterionHandler) CreateBIAImpactCriterion(ctx *gin.Context) {
	handleCreate(ctx, h.criteria.Create)
}

// UpdateBIAImpactCriterion updates a BIA impact criterion
// @Summary Update BIA impact criterion
// @Description Supplied levels replace the existing ones
// @Tags bia
// @Accept json
// @Produce json
// @Param id path string true "BIA impact criterion ID" format(uuid)
// @Param body body services.BIAImpactCriterionUpdate true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.BIAImpactCriterion}
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /bia/impact-criteria/{id} [put]
func (h *BIAImpactCriterionHandler) UpdateBIAImpactCriterion(ctx *gin.Context) {
	handleUpdate(ctx, "bia impact criterion", h.criteria.Update)
}

// DeleteBIAImpactCriterion deletes a BIA impact criterion
// @Summary Delete BIA impact criterion
// @Description Deletes the criterion and its levels. Criteria used by a framework cannot be deleted.
// @Tags bia
// @Produce json
// @Param id path string true "BIA impact criterion ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody "Criterion used by a framework"
// @Router /bia/impact-criteria/{id} [delete]
func (h *BIAImpactCriterionHandler) DeleteBIAImpactCriterion(ctx *gin.Context) {
	handleDelete(ctx, "bia impact criterion", "BIA impact criterion deleted successfully", h.criteria.Delete)
}
