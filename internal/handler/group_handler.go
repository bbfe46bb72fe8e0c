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

type groupService interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateGroupRequest) (*models.GroupDetail, error)
	List(ctx context.Context, actor *models.JWTClaims) ([]dto.GroupView, error)
	Get(ctx context.Context, actor *models.JWTClaims, id string) (*dto.GroupView, error)
	Edit(ctx context.Context, actor *models.JWTClaims, id string, req dto.EditGroupRequest) (*models.GroupDetail, error)
	Assign(ctx context.Context, actor *models.JWTClaims, req dto.AssignGroupRequest) (*models.GroupDetail, error)
	Reject(ctx context.Context, actor *models.JWTClaims, id string) (*models.GroupDetail, error)
}

// GroupHandler exposes the project group lifecycle.
type GroupHandler struct {
	service groupService
}

// NewGroupHandler constructs the handler.
func NewGroupHandler(service groupService) *GroupHandler {
	return &GroupHandler{service: service}
}

// Create godoc
// @Summary Form a project group
// @Description The creator's department is applied to the group. Members must be existing students who are not yet in a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body dto.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /createGroup [post]
func (h *GroupHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateGroupRequest
	if !bindJSON(c, &req, "invalid group payload") {
		return
	}
	group, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, group.ID)
	response.Created(c, group)
}

// List godoc
// @Summary List visible groups
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /getGroup [get]
func (h *GroupHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	groups, err := h.service.List(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Get godoc
// @Summary Group detail
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /getGroup/{id} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	group, err := h.service.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Edit godoc
// @Summary Rename a group or change its topic
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.EditGroupRequest true "Group changes"
// @Success 200 {object} response.Envelope
// @Router /editGroup/{id} [put]
func (h *GroupHandler) Edit(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.EditGroupRequest
	if !bindJSON(c, &req, "invalid group payload") {
		return
	}
	group, err := h.service.Edit(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Assign godoc
// @Summary Assign a guide to a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body dto.AssignGroupRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignGroup [put]
func (h *GroupHandler) Assign(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.AssignGroupRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	group, err := h.service.Assign(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, group.ID)
	response.JSON(c, http.StatusOK, group, nil)
}

// Reject godoc
// @Summary Decline a pending group
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /rejectGroup/{id} [put]
func (h *GroupHandler) Reject(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	group, err := h.service.Reject(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}
