package handlers

import (
	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
)

type DepartmentHandler struct {
	departments *services.DepartmentService
}

func NewDepartmentHandler(departments *services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departments: departments}
}

// GetDepartments lists department records of the caller's organization
// @Summary List department records
// @Tags departments
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term"
// @Param filters[is_active] query string false "Filter by is_active"
// @Param filters[department_head_id] query string false "Filter by department_head_id"
// @Param sort[field] query string false "Sort field (name, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Page[models.Department]}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /departments [get]
func (h *DepartmentHandler) GetDepartments(ctx *gin.Context) {
	handleList(ctx, h.departments.List)
}

// GetDepartment retrieves a department by ID
// @Summary Get department by ID
// @Tags departments
// @Produce json
// @Param id path string true "department ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Department}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /departments/{id} [get]
func (h *DepartmentHandler) GetDepartment(ctx *gin.Context) {
	handleGet(ctx, "department", h.departments.Get)
}

// CreateDepartment creates a department
// @Summary Create department
// @Description Name unique per organization. department_head_id and location_ids must belong to the organization.
// @Tags departments
// @Accept json
// @Produce json
// @Param body body services.DepartmentCreate true "department data"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.Department}
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /departments [post]
func (h *DepartmentHandler) CreateDepartment(ctx *gin.Context) {
	handleCreate(ctx, h.departments.Create)
}

// UpdateDepartment updates a department
// @Summary Update department
// @Description Omitted location_ids leaves the locations untouched; [] clears them
// @Tags departments
// @Accept json
// @Produce json
// @Param id path string true "department ID" format(uuid)
// @Param body body services.DepartmentUpdate true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Department}
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /departments/{id} [put]
func (h *DepartmentHandler) UpdateDepartment(ctx *gin.Context) {
	handleUpdate(ctx, "department", h.departments.Update)
}

// DeleteDepartment deletes a department
// @Summary Delete department
// @Description Soft delete: the department is marked inactive
// @Tags departments
// @Produce json
// @Param id path string true "department ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Router /departments/{id} [delete]
func (h *DepartmentHandler) DeleteDepartment(ctx *gin.Context) {
	handleDelete(ctx, "department", "Department deleted successfully", h.departments.Delete)
}
