package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fyp-manager-api/internal/dto"
	"github.com/noah-isme/fyp-manager-api/internal/middleware"
	"github.com/noah-isme/fyp-manager-api/internal/models"
	"github.com/noah-isme/fyp-manager-api/pkg/response"
)

type departmentService interface {
	List(ctx context.Context) ([]models.Department, bool, error)
	Get(ctx context.Context, id string) (*models.Department, error)
	Create(ctx context.Context, req dto.DepartmentRequest) (*models.Department, error)
	Update(ctx context.Context, id string, req dto.DepartmentRequest) (*models.Department, error)
	Delete(ctx context.Context, id string) error
}

// DepartmentHandler exposes department endpoints.
type DepartmentHandler struct {
	service departmentService
}

// NewDepartmentHandler constructs the handler.
func NewDepartmentHandler(service departmentService) *DepartmentHandler {
	return &DepartmentHandler{service: service}
}

// List godoc
// @Summary List departments
// @Tags Departments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /getDepartment [get]
func (h *DepartmentHandler) List(c *gin.Context) {
	departments, cacheHit, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	respondWithMeta(c, http.StatusOK, departments)
}

// Get godoc
// @Summary Get department
// @Tags Departments
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /getDepartment/{id} [get]
func (h *DepartmentHandler) Get(c *gin.Context) {
	department, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil)
}

// Create godoc
// @Summary Create department
// @Tags Departments
// @Accept json
// @Produce json
// @Param payload body dto.DepartmentRequest true "Department payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /addDepartment [post]
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req dto.DepartmentRequest
	if !bindJSON(c, &req, "invalid department payload") {
		return
	}
	department, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, department.ID)
	response.Created(c, department)
}

// Update godoc
// @Summary Update department
// @Tags Departments
// @Accept json
// @Produce json
// @Param id path string true "Department ID"
// @Param payload body dto.DepartmentRequest true "Department payload"
// @Success 200 {object} response.Envelope
// @Router /updateDepartment/{id} [put]
func (h *DepartmentHandler) Update(c *gin.Context) {
	var req dto.DepartmentRequest
	if !bindJSON(c, &req, "invalid department payload") {
		return
	}
	department, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil)
}

// Delete godoc
// @Summary Delete department
// @Tags Departments
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /deleteDepartment/{id} [delete]
func (h *DepartmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	deleted(c, "Department deleted successfully")
}
