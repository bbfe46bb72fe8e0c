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

type notificationService interface {
	BroadcastToGuides(ctx context.Context, actor *models.JWTClaims, req dto.NotificationContent) (*dto.NotificationResult, error)
	SendToGuides(ctx context.Context, actor *models.JWTClaims, req dto.TeacherNotificationRequest) (*dto.NotificationResult, error)
	BroadcastToStudents(ctx context.Context, actor *models.JWTClaims, req dto.NotificationContent) (*dto.NotificationResult, error)
	SendToStudents(ctx context.Context, actor *models.JWTClaims, req dto.StudentNotificationRequest) (*dto.NotificationResult, error)
	SendFromGuide(ctx context.Context, actor *models.JWTClaims, req dto.GuideNotificationRequest) (*dto.NotificationResult, error)
	List(ctx context.Context, actor *models.JWTClaims) ([]models.Notification, error)
	Get(ctx context.Context, actor *models.JWTClaims, id string) (*dto.NotificationDetail, error)
}

// NotificationHandler exposes notification send and inbox endpoints.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// BroadcastToGuides godoc
// @Summary Notify every guide
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.NotificationContent true "Notification"
// @Success 201 {object} response.Envelope
// @Router /createNotification [post]
func (h *NotificationHandler) BroadcastToGuides(c *gin.Context) {
	var req dto.NotificationContent
	sendNotification(c, &req, func(ctx context.Context, actor *models.JWTClaims) (*dto.NotificationResult, error) {
		return h.service.BroadcastToGuides(ctx, actor, req)
	})
}

// SendToGuides godoc
// @Summary Notify selected guides
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.TeacherNotificationRequest true "Notification"
// @Success 201 {object} response.Envelope
// @Router /specificTeacherNotification [post]
func (h *NotificationHandler) SendToGuides(c *gin.Context) {
	var req dto.TeacherNotificationRequest
	sendNotification(c, &req, func(ctx context.Context, actor *models.JWTClaims) (*dto.NotificationResult, error) {
		return h.service.SendToGuides(ctx, actor, req)
	})
}

// BroadcastToStudents godoc
// @Summary Notify every student
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.NotificationContent true "Notification"
// @Success 201 {object} response.Envelope
// @Router /createStudentNotification [post]
func (h *NotificationHandler) BroadcastToStudents(c *gin.Context) {
	var req dto.NotificationContent
	sendNotification(c, &req, func(ctx context.Context, actor *models.JWTClaims) (*dto.NotificationResult, error) {
		return h.service.BroadcastToStudents(ctx, actor, req)
	})
}

// SendToStudents godoc
// @Summary Notify selected students
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.StudentNotificationRequest true "Notification"
// @Success 201 {object} response.Envelope
// @Router /createSpecificNotification [post]
func (h *NotificationHandler) SendToStudents(c *gin.Context) {
	var req dto.StudentNotificationRequest
	sendNotification(c, &req, func(ctx context.Context, actor *models.JWTClaims) (*dto.NotificationResult, error) {
		return h.service.SendToStudents(ctx, actor, req)
	})
}

// SendFromGuide godoc
// @Summary Guide message to selected students
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.GuideNotificationRequest true "Notification"
// @Success 201 {object} response.Envelope
// @Router /createNotificationByTeacher [post]
func (h *NotificationHandler) SendFromGuide(c *gin.Context) {
	var req dto.GuideNotificationRequest
	sendNotification(c, &req, func(ctx context.Context, actor *models.JWTClaims) (*dto.NotificationResult, error) {
		return h.service.SendFromGuide(ctx, actor, req)
	})
}

// List godoc
// @Summary Notifications visible to the caller
// @Description Administrators see every notification, others their own inbox
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /getNotification [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	notifications, err := h.service.List(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}

// Get godoc
// @Summary Notification with its recipient count
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /getNotification/{id} [get]
func (h *NotificationHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	detail, err := h.service.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// sendNotification binds req, then runs send and writes 201 with the delivery outcome.
func sendNotification(c *gin.Context, req interface{}, send func(context.Context, *models.JWTClaims) (*dto.NotificationResult, error)) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if !bindJSON(c, req, "invalid notification payload") {
		return
	}
	result, err := send(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Notification != nil {
		middleware.SetAuditResource(c, result.Notification.ID)
	}
	response.Created(c, result)
}
