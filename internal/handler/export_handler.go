package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fyp-manager-api/internal/models"
	"github.com/noah-isme/fyp-manager-api/pkg/response"
)

type exportService interface {
	GroupMarkSheet(ctx context.Context, actor *models.JWTClaims, groupID string) ([]byte, string, error)
}

// ExportHandler serves generated documents.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// MarkSheet godoc
// @Summary Download the mark sheet of a group
// @Tags Tasks
// @Produce application/pdf
// @Param groupId path string true "Group ID"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exportMarks/{groupId} [get]
func (h *ExportHandler) MarkSheet(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	content, filename, err := h.service.GroupMarkSheet(c.Request.Context(), claims, c.Param("groupId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", content)
}
