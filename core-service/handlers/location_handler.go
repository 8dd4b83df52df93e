package handlers

import (
	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
)

type LocationHandler struct {
	locations *services.LocationService
}

func NewLocationHandler(locations *services.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// GetLocations lists location records of the caller's organization
// @Summary List location records
// @Tags locations
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term"
// @Param filters[is_active] query string false "Filter by is_active"
// @Param filters[city] query string false "Filter by city"
// @Param filters[country] query string false "Filter by country"
// @Param sort[field] query string false "Sort field (name, city, country, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Page[models.Location]}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /locations [get]
func (h *LocationHandler) GetLocations(ctx *gin.Context) {
	handleList(ctx, h.locations.List)
}

// GetLocation retrieves a location by ID
// @Summary Get location by ID
// @Tags locations
// @Produce json
// @Param id path string true "location ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Location}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /locations/{id} [get]
func (h *LocationHandler) GetLocation(ctx *gin.Context) {
	handleGet(ctx, "location", h.locations.Get)
}

// CreateLocation creates a location
// @Summary Create location
// @Description Name unique per organization. Latitude within [-90, 90], longitude within [-180, 180].
// @Tags locations
// @Accept json
// @Produce json
// @Param body body services.LocationCreate true "location data"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.Location}
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /locations [post]
func (h *LocationHandler) CreateLocation(ctx *gin.Context) {
	handleCreate(ctx, h.locations.Create)
}

// UpdateLocation updates a location
// @Summary Update location
// @Description Omitted fields are left untouched
// @Tags locations
// @Accept json
// @Produce json
// @Param id path string true "location ID" format(uuid)
// @Param body body services.LocationUpdate true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Location}
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /locations/{id} [put]
func (h *LocationHandler) UpdateLocation(ctx *gin.Context) {
	handleUpdate(ctx, "location", h.locations.Update)
}

// DeleteLocation deletes a location
// @Summary Delete location
// @Description Soft delete: the location is marked inactive
// @Tags locations
// @Produce json
// @Param id path string true "location ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Router /locations/{id} [delete]
func (h *LocationHandler) DeleteLocation(ctx *gin.Context) {
	handleDelete(ctx, "location", "Location deleted successfully", h.locations.Delete)
}
