package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fyp-manager-api/internal/models"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
	"github.com/noah-isme/fyp-manager-api/pkg/response"
)

type auditService interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// AuditHandler exposes the audit trail to administrators.
type AuditHandler struct {
	service auditService
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(service auditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List godoc
// @Summary Recent audit entries
// @Tags Audit
// @Produce json
// @Param actorId query string false "Actor ID"
// @Param resource query string false "Resource name"
// @Param limit query int false "Maximum entries (1-500)"
// @Success 200 {object} response.Envelope
// @Router /auditLogs [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter := models.AuditFilter{
		ActorID:  strings.TrimSpace(c.Query("actorId")),
		Resource: strings.TrimSpace(c.Query("resource")),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a number"))
			return
		}
		filter.Limit = limit
	}
	logs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}
