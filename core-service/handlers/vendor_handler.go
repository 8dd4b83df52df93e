package handlers

import (
	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
)

type VendorHandler struct {
	vendors *services.VendorService
}

func NewVendorHandler(vendors *services.VendorService) *VendorHandler {
	return &VendorHandler{vendors: vendors}
}

// GetVendors lists vendor records of the caller's organization
// @Summary List vendor records
// @Tags vendors
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term"
// @Param filters[is_active] query string false "Filter by is_active"
// @Param filters[criticality] query string false "Filter by criticality"
// @Param sort[field] query string false "Sort field (name, criticality, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Page[models.Vendor]}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /vendors [get]
func (h *VendorHandler) GetVendors(ctx *gin.Context) {
	handleList(ctx, h.vendors.List)
}

// GetVendor retrieves a vendor by ID
// @Summary Get vendor by ID
// @Tags vendors
// @Produce json
// @Param id path string true "vendor ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Vendor}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /vendors/{id} [get]
func (h *VendorHandler) GetVendor(ctx *gin.Context) {
	handleGet(ctx, "vendor", h.vendors.Get)
}

// CreateVendor creates a vendor
// @Summary Create vendor
// @Description Name unique per organization. Criticality defaults to Medium.
// @Tags vendors
// @Accept json
// @Produce json
// @Param body body services.VendorCreate true "vendor data"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.Vendor}
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /vendors [post]
func (h *VendorHandler) CreateVendor(ctx *gin.Context) {
	handleCreate(ctx, h.vendors.Create)
}

// UpdateVendor updates a vendor
// @Summary Update vendor
// @Description Omitted fields are left untouched
// @Tags vendors
// @Accept json
// @Produce json
// @Param id path string true "vendor ID" format(uuid)
// @Param body body services.VendorUpdate true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Vendor}
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /vendors/{id} [put]
func (h *VendorHandler) UpdateVendor(ctx *gin.Context) {
	handleUpdate(ctx, "vendor", h.vendors.Update)
}

// DeleteVendor deletes a vendor
// @Summary Delete vendor
// @Description Soft delete: the vendor is marked inactive
// @Tags vendors
// @Produce json
// @Param id path string true "vendor ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Router /vendors/{id} [delete]
func (h *VendorHandler) DeleteVendor(ctx *gin.Context) {
	handleDelete(ctx, "vendor", "Vendor deleted successfully", h.vendors.Delete)
}
