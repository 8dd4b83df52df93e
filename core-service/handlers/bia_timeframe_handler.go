package handlers

import (
	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
)

type BIATimeframeHandler struct {
	timeframes *services.BIATimeframeService
}

func NewBIATimeframeHandler(timeframes *services.BIATimeframeService) *BIATimeframeHandler {
	return &BIATimeframeHandler{timeframes: timeframes}
}

// GetBIATimeframes lists BIA timeframe records of the caller's organization
// @Summary List BIA timeframe records
// @Tags bia
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term"
// @Param filters[is_active] query string false "Filter by is_active"
// @Param sort[field] query string false "Sort field (sequence_order, timeframe_name, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Page[models.BIATimeframe]}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /bia/timeframes [get]
func (h *BIATimeframeHandler) GetBIATimeframes(ctx *gin.Context) {
	handleList(ctx, h.timeframes.List)
}

// GetBIATimeframe retrieves a BIA timeframe by ID
// @Summary Get BIA timeframe by ID
// @Tags bia
// @Produce json
// @Param id path string true "BIA timeframe ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.BIATimeframe}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /bia/timeframes/{id} [get]
func (h *BIATimeframeHandler) GetBIATimeframe(ctx *gin.Context) {
	handleGet(ctx, "bia timeframe", h.timeframes.Get)
}

// CreateBIATimeframe creates a BIA timeframe
// @Summary Create BIA timeframe
// @Description Timeframe names are unique per organization.
// @Tags bia
// @Accept json
// @Produce json
// @Param body body services.BIATimeframeCreate true "BIA timeframe data"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.BIATimeframe}
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /bia/timeframes [post]
func (h *BIATimeframeHandler) CreateBIATimeframe(ctx *gin.Context) {
	handleCreate(ctx, h.timeframes.Create)
}

// UpdateBIATimeframe updates a BIA timeframe
// @Summary Update BIA timeframe
// @Description Omitted fields are left untouched
// @Tags bia
// @Accept json
// @Produce json
// @Param id path string true "BIA timeframe ID" format(uuid)
// @Param body body services.BIATimeframeUpdate true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.BIATimeframe}
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /bia/timeframes/{id} [put]
func (h *BIATimeframeHandler) UpdateBIATimeframe(ctx *gin.Context) {
	handleUpdate(ctx, "bia timeframe", h.timeframes.Update)
}

// DeleteBIATimeframe deletes a BIA timeframe
// @Summary Delete BIA timeframe
// @Description Soft delete: the timeframe is marked inactive
// @Tags bia
// @Produce json
// @Param id path string true "BIA timeframe ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Router /bia/timeframes/{id} [delete]
func (h *BIATimeframeHandler) DeleteBIATimeframe(ctx *gin.Context) {
	handleDelete(ctx, "bia timeframe", "BIA timeframe deleted successfully", h.timeframes.Delete)
}
