package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fyp-manager-api/internal/dto"
	"github.com/noah-isme/fyp-manager-api/internal/middleware"
	"github.com/noah-isme/fyp-manager-api/internal/models"
	"github.com/noah-isme/fyp-manager-api/pkg/response"
)

type guideService interface {
	List(ctx context.Context, actor *models.JWTClaims, department string) ([]models.Principal, error)
	Create(ctx context.Context, req dto.GuideRequest) (*models.Principal, error)
	Update(ctx context.Context, id string, req dto.UpdateGuideRequest) (*models.Principal, error)
	Delete(ctx context.Context, id string) error
}

// GuideHandler handles guide endpoints.
type GuideHandler struct {
	service guideService
}

// NewGuideHandler constructs the handler.
func NewGuideHandler(service guideService) *GuideHandler {
	return &GuideHandler{service: service}
}

// List godoc
// @Summary List guides
// @Description Guides only see their own record
// @Tags Guides
// @Produce json
// @Param department query string false "Department name"
// @Success 200 {object} response.Envelope
// @Router /getGuids [get]
func (h *GuideHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	guides, err := h.service.List(c.Request.Context(), claims, strings.TrimSpace(c.Query("department")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, guides, nil)
}

// Create godoc
// @Summary Create guide
// @Tags Guides
// @Accept json
// @Produce json
// @Param payload body dto.GuideRequest true "Guide payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /addGuid [post]
func (h *GuideHandler) Create(c *gin.Context) {
	var req dto.GuideRequest
	if !bindJSON(c, &req, "invalid guide payload") {
		return
	}
	guide, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, guide.ID)
	response.Created(c, guide)
}

// Update godoc
// @Summary Update guide
// @Tags Guides
// @Accept json
// @Produce json
// @Param id path string true "Guide ID"
// @Param payload body dto.UpdateGuideRequest true "Guide payload"
// @Success 200 {object} response.Envelope
// @Router /updateGuid/{id} [put]
func (h *GuideHandler) Update(c *gin.Context) {
	var req dto.UpdateGuideRequest
	if !bindJSON(c, &req, "invalid guide payload") {
		return
	}
	guide, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, guide, nil)
}

// Delete godoc
// @Summary Delete guide
// @Tags Guides
// @Produce json
// @Param id path string true "Guide ID"
// @Success 200 {object} response.Envelope
// @Router /deleteGuid/{id} [delete]
func (h *GuideHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	deleted(c, "Guide deleted successfully")
}
