package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/fyp-manager-api/internal/dto"
	"github.com/noah-isme/fyp-manager-api/internal/models"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
	"github.com/noah-isme/fyp-manager-api/pkg/jobs"
)

// JobTypeDistributeNotification retries a failed fan-out.
const JobTypeDistributeNotification = "notification.distribute"

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	Distribute(ctx context.Context, notificationID string, selector models.RecipientSelector) (int64, error)
	List(ctx context.Context) ([]models.Notification, error)
	ListForPrincipal(ctx context.Context, principalID string) ([]models.Notification, error)
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	CountRecipients(ctx context.Context, notificationID string) (int, error)
}

type retryQueue interface {
	Register(jobType string, handler jobs.Handler)
	Enqueue(job jobs.Job) error
}

// DistributePayload is the retry job payload.
type DistributePayload struct {
	NotificationID string
	Selector       models.RecipientSelector
}

// NotificationService creates notifications and distributes them to inboxes.
// The two steps are not atomic: a notification is stored first, then its id is
// added to each recipient's inbox with set semantics, so redelivery is harmless.
type NotificationService struct {
	repo      notificationRepository
	queue     retryQueue
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewNotificationService constructs the service and registers the retry handler on queue.
func NewNotificationService(repo notificationRepository, queue retryQueue, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{repo: repo, queue: queue, validator: validate, metrics: metrics, logger: logger}
	if queue != nil {
		queue.Register(JobTypeDistributeNotification, s.handleRetry)
	}
	return s
}

// BroadcastToGuides notifies every guide.
func (s *NotificationService) BroadcastToGuides(ctx context.Context, actor *models.JWTClaims, req dto.NotificationContent) (*dto.NotificationResult, error) {
	if err := s.validateContent(req); err != nil {
		return nil, err
	}
	return s.send(ctx, actor, req.Title, req.Message, models.NotificationTypeTeachers, models.RecipientSelector{Role: models.RoleGuide})
}

// SendToGuides notifies the listed guides.
func (s *NotificationService) SendToGuides(ctx context.Context, actor *models.JWTClaims, req dto.TeacherNotificationRequest) (*dto.NotificationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "teacherIds must be a non-empty list of valid ids")
	}
	if err := s.validateContent(req.NewNotification); err != nil {
		return nil, err
	}
	selector := models.RecipientSelector{Role: models.RoleGuide, IDs: dedupe(req.TeacherIDs)}
	return s.send(ctx, actor, req.NewNotification.Title, req.NewNotification.Message, models.NotificationTypeTeachers, selector)
}

// BroadcastToStudents notifies every student.
func (s *NotificationService) BroadcastToStudents(ctx context.Context, actor *models.JWTClaims, req dto.NotificationContent) (*dto.NotificationResult, error) {
	if err := s.validateContent(req); err != nil {
		return nil, err
	}
	return s.send(ctx, actor, req.Title, req.Message, models.NotificationTypeStudents, models.RecipientSelector{Role: models.RoleStudent})
}

// SendToStudents notifies the listed students.
func (s *NotificationService) SendToStudents(ctx context.Context, actor *models.JWTClaims, req dto.StudentNotificationRequest) (*dto.NotificationResult, error) {
	if err := s.validateContent(req.NotificationContent); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "studentIds must be a non-empty list of valid ids")
	}
	selector := models.RecipientSelector{Role: models.RoleStudent, IDs: dedupe(req.StudentIDs)}
	return s.send(ctx, actor, req.Title, req.Message, models.NotificationTypeStudents, selector)
}

// SendFromGuide lets a guide message students. Guide messages carry no title.
func (s *NotificationService) SendFromGuide(ctx context.Context, actor *models.JWTClaims, req dto.GuideNotificationRequest) (*dto.NotificationResult, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "message must be 3 to 500 characters and studentIds a non-empty list of valid ids")
	}
	selector := models.RecipientSelector{Role: models.RoleStudent, IDs: dedupe(req.StudentIDs)}
	return s.send(ctx, actor, "", req.Message, models.NotificationTypeStudents, selector)
}

// List returns every notification to administrators and the personal inbox to everyone else.
func (s *NotificationService) List(ctx context.Context, actor *models.JWTClaims) ([]models.Notification, error) {
	var (
		items []models.Notification
		err   error
	)
	if actor.IsAdmin() {
		items, err = s.repo.List(ctx)
	} else {
		items, err = s.repo.ListForPrincipal(ctx, actor.UserID)
	}
	if err != nil {
		return nil, internalError(err, "failed to list notifications")
	}
	return items, nil
}

// Get returns one notification and how many inboxes hold it, so an administrator
// can confirm a deferred fan-out has landed.
func (s *NotificationService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*dto.NotificationDetail, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can inspect deliveries")
	}
	if id = canonicalID(id); id == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Notification not found")
	}
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Notification not found")
	}
	recipients, err := s.repo.CountRecipients(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to count recipients")
	}
	return &dto.NotificationDetail{Notification: notification, Recipients: recipients}, nil
}

func (s *NotificationService) validateContent(content dto.NotificationContent) error {
	content.Title = strings.TrimSpace(content.Title)
	content.Message = strings.TrimSpace(content.Message)
	if err := s.validator.Struct(content); err != nil {
		return validationError(err, "title must be 3 to 100 characters and message 5 to 500 characters")
	}
	return nil
}

func (s *NotificationService) send(ctx context.Context, actor *models.JWTClaims, title, message string, kind models.NotificationType, selector models.RecipientSelector) (*dto.NotificationResult, error) {
	notification := &models.Notification{
		Title:   strings.TrimSpace(title),
		Message: strings.TrimSpace(message),
		Type:    kind,
	}
	if actor != nil {
		notification.CreatedBy = models.StringPtr(actor.UserID)
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, internalError(err, "failed to create notification")
	}

	result := &dto.NotificationResult{Notification: notification}
	delivered, err := s.repo.Distribute(ctx, notification.ID, selector)
	if err != nil {
		s.logger.Warn("notification fan-out failed, scheduling retry",
			zap.String("notification_id", notification.ID), zap.String("role", string(selector.Role)), zap.Error(err))
		s.scheduleRetry(notification.ID, selector)
		return result, nil
	}

	s.metrics.NotificationsDelivered(delivered)
	result.Delivered = true
	result.Recipients = delivered
	return result, nil
}

func (s *NotificationService) scheduleRetry(notificationID string, selector models.RecipientSelector) {
	s.metrics.NotificationDeferred()
	if s.queue == nil {
		s.logger.Error("no retry queue configured, notification left undelivered", zap.String("notification_id", notificationID))
		return
	}
	job := jobs.Job{
		ID:      notificationID,
		Type:    JobTypeDistributeNotification,
		Payload: DistributePayload{NotificationID: notificationID, Selector: selector},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Error("failed to enqueue notification retry", zap.String("notification_id", notificationID), zap.Error(err))
	}
}

func (s *NotificationService) handleRetry(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(DistributePayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	delivered, err := s.repo.Distribute(ctx, payload.NotificationID, payload.Selector)
	if err != nil {
		return err
	}
	s.metrics.NotificationsDelivered(delivered)
	s.logger.Info("notification delivered on retry", zap.String("notification_id", payload.NotificationID), zap.Int64("recipients", delivered))
	return nil
}
