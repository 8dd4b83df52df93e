package handlers

import (
	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/services"
)

type ProcessHandler struct {
	processes *services.ProcessService
}

func NewProcessHandler(processes *services.ProcessService) *ProcessHandler {
	return &ProcessHandler{processes: processes}
}

// GetProcesses lists process records of the caller's organization
// @Summary List process records
// @Tags processes
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term"
// @Param filters[is_active] query string false "Filter by is_active"
// @Param filters[department_id] query string false "Filter by department_id"
// @Param filters[process_owner_id] query string false "Filter by process_owner_id"
// @Param filters[criticality_level] query string false "Filter by criticality_level"
// @Param sort[field] query string false "Sort field (name, criticality_level, rto, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=services.Page[models.Process]}
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /processes [get]
func (h *ProcessHandler) GetProcesses(ctx *gin.Context) {
	handleList(ctx, h.processes.List)
}

// GetProcess retrieves a process by ID
// @Summary Get process by ID
// @Tags processes
// @Produce json
// @Param id path string true "process ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Process}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /processes/{id} [get]
func (h *ProcessHandler) GetProcess(ctx *gin.Context) {
	handleGet(ctx, "process", h.processes.Get)
}

// CreateProcess creates a process
// @Summary Create process
// @Description Name unique per department. Locations must be assigned to the department. The owner must be an active user of the organization.
// @Tags processes
// @Accept json
// @Produce json
// @Param body body services.ProcessCreate true "process data"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.Process}
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /processes [post]
func (h *ProcessHandler) CreateProcess(ctx *gin.Context) {
	handleCreate(ctx, h.processes.Create)
}

// UpdateProcess updates a process
// @Summary Update process
// @Description Omitted fields are left untouched. An empty list removes all links of that kind.
// @Tags processes
// @Accept json
// @Produce json
// @Param id path string true "process ID" format(uuid)
// @Param body body services.ProcessUpdate true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Process}
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ErrorBody
// @Router /processes/{id} [put]
func (h *ProcessHandler) UpdateProcess(ctx *gin.Context) {
	handleUpdate(ctx, "process", h.processes.Update)
}

// DeleteProcess deletes a process
// @Summary Delete process
// @Description Soft delete: the process is marked inactive
// @Tags processes
// @Produce json
// @Param id path string true "process ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Router /processes/{id} [delete]
func (h *ProcessHandler) DeleteProcess(ctx *gin.Context) {
	handleDelete(ctx, "process", "Process deleted successfully", h.processes.Delete)
}
