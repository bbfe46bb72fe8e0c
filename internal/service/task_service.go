package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/fyp-manager-api/internal/dto"
	"github.com/noah-isme/fyp-manager-api/internal/models"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
	"github.com/noah-isme/fyp-manager-api/pkg/storage"
)

// UploadPathPrefix is prepended to stored keys to form the public download path.
const UploadPathPrefix = "uploads/"

type taskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context, scope models.TaskScope) ([]models.Task, error)
	Submit(ctx context.Context, id string, file models.SubmissionFile) error
	Review(ctx context.Context, id, remark string, marks float64, status models.TaskStatus) error
	PublishFinalMark(ctx context.Context, id string, mark float64) (bool, error)
	Delete(ctx context.Context, id string) error
}

type taskGroupLookup interface {
	FindByID(ctx context.Context, id string) (*models.GroupDetail, error)
}

type submissionStorage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (storage.Object, error)
	Delete(ctx context.Context, key string) error
}

// TaskConfig tunes submission handling.
type TaskConfig struct {
	MaxFileSize int64
}

// TaskService implements the task lifecycle:
// Pending -> Submitted -> Needs Resubmit -> Submitted ... -> Verified.
type TaskService struct {
	tasks     taskRepository
	groups    taskGroupLookup
	storage   submissionStorage
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       TaskConfig
	now       func() time.Time
}

// NewTaskService constructs a TaskService.
func NewTaskService(tasks taskRepository, groups taskGroupLookup, store submissionStorage, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg TaskConfig) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 << 20
	}
	return &TaskService{
		tasks:     tasks,
		groups:    groups,
		storage:   store,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Add creates a task for every current member of the group. A guide may only
// add tasks to groups assigned to them.
func (s *TaskService) Add(ctx context.Context, actor *models.JWTClaims, req dto.AddTaskRequest) (*models.Task, error) {
	req.TaskName = strings.TrimSpace(req.TaskName)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid task payload")
	}
	if req.SubmissionDate == nil || req.SubmissionDate.IsZero() {
		return nil, appErrors.Validation("Submission date is required")
	}
	if actor.Role != models.RoleGuide && !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only guides can add tasks")
	}

	group, err := s.groups.FindByID(ctx, req.GroupID)
	if err != nil {
		return nil, lookupError(err, "Group not found")
	}
	if actor.Role == models.RoleGuide && (group.TeacherID == nil || *group.TeacherID != actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "group is not assigned to you")
	}
	members := group.MemberIDs()
	if len(members) == 0 {
		return nil, appErrors.Validation("Group has no members")
	}

	taskType := models.TaskType(req.Type)
	if taskType == "" {
		taskType = models.TaskTypeNormal
	}
	if req.TaskName == models.FinalReportTaskName {
		taskType = models.TaskTypeFinal
	}
	var marks float64
	if req.Marks != nil {
		marks = *req.Marks
	}
	due := req.SubmissionDate.Time

	task := &models.Task{
		TaskName:       req.TaskName,
		GroupID:        group.ID,
		AssignedBy:     models.StringPtr(actor.UserID),
		Students:       members,
		SubmissionDate: &due,
		Type:           taskType,
		Marks:          marks,
		Status:         models.TaskStatusPending,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, internalError(err, "failed to create task")
	}
	return task, nil
}

// List returns tasks visible to actor: a student's own tasks, the tasks a guide
// assigned, or every task for an administrator. groupID optionally narrows the result.
func (s *TaskService) List(ctx context.Context, actor *models.JWTClaims, groupID string) ([]models.Task, error) {
	scope := models.TaskScope{GroupID: strings.TrimSpace(groupID)}
	if scope.GroupID != "" {
		if scope.GroupID = canonicalID(scope.GroupID); scope.GroupID == "" {
			return []models.Task{}, nil
		}
	}
	switch actor.Role {
	case models.RoleStudent:
		scope.StudentID = actor.UserID
	case models.RoleGuide:
		scope.AssignedBy = actor.UserID
	case models.RoleAdmin:
	default:
		return nil, appErrors.ErrForbidden
	}
	tasks, err := s.tasks.List(ctx, scope)
	if err != nil {
		return nil, internalError(err, "failed to list tasks")
	}
	return tasks, nil
}

// Submit stores the uploaded file and moves the task to Submitted whatever its
// previous status was. A replaced file is removed from storage.
func (s *TaskService) Submit(ctx context.Context, actor *models.JWTClaims, id string, upload *dto.TaskUpload) (*models.Task, error) {
	if actor.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can submit files")
	}
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.HasStudent(actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not assigned to this task")
	}
	if upload == nil || upload.Content == nil || strings.TrimSpace(upload.Filename) == "" {
		return nil, appErrors.Validation("File is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.ErrFileTooLarge
	}

	key := storage.UploadName(upload.Filename, s.now())
	obj, err := s.storage.Save(ctx, key, upload.Content, upload.Size, upload.MimeType)
	if err != nil {
		return nil, internalError(err, "failed to store submission")
	}
	mimeType := upload.MimeType
	if mimeType == "" {
		mimeType = obj.ContentType
	}
	file := models.SubmissionFile{Name: upload.Filename, Path: UploadPathPrefix + obj.Key, Type: mimeType}
	if err := s.tasks.Submit(ctx, task.ID, file); err != nil {
		s.removeFile(ctx, file.Path)
		return nil, lookupError(err, "Task not found")
	}
	if task.SubmittedFilePath != nil && *task.SubmittedFilePath != file.Path {
		s.removeFile(ctx, *task.SubmittedFilePath)
	}

	s.metrics.TaskSubmitted()
	return s.find(ctx, task.ID)
}

// Review records the verdict of the guide who assigned the task, or of an administrator.
func (s *TaskService) Review(ctx context.Context, actor *models.JWTClaims, id string, req dto.ReviewTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid review payload")
	}
	status := models.TaskStatus(strings.TrimSpace(req.Status))
	if !status.Valid() || status == models.TaskStatusPending {
		return nil, appErrors.Validation("Invalid task status")
	}

	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(actor.Role == models.RoleGuide && task.IsAssignedBy(actor.UserID)) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigning guide can review this task")
	}

	remark := task.Remark
	if req.Remark != nil {
		remark = strings.TrimSpace(*req.Remark)
	}
	if err := s.tasks.Review(ctx, task.ID, remark, task.Marks, status); err != nil {
		return nil, lookupError(err, "Task not found")
	}
	s.metrics.TaskReviewed(string(status))
	return s.find(ctx, task.ID)
}

// PublishFinalMarks sets the final mark and verifies the task. Publishing twice
// fails with a conflict and leaves the task verified.
func (s *TaskService) PublishFinalMarks(ctx context.Context, actor *models.JWTClaims, id string, req dto.PublishMarksRequest) (*models.Task, error) {
	if actor.Role != models.RoleGuide {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only guides can publish marks")
	}
	if req.FinalMark == nil {
		return nil, appErrors.Validation("Final mark is required")
	}
	if *req.FinalMark < 0 {
		return nil, appErrors.Validation("Final mark must be a non-negative number")
	}

	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsAssignedBy(actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigning guide can publish marks")
	}
	if task.Status == models.TaskStatusVerified {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Final mark already published")
	}

	updated, err := s.tasks.PublishFinalMark(ctx, task.ID, *req.FinalMark)
	if err != nil {
		return nil, internalError(err, "failed to publish final mark")
	}
	if !updated {
		if _, err := s.tasks.FindByID(ctx, task.ID); errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Task not found")
		}
		return nil, appErrors.Clone(appErrors.ErrConflict, "Final mark already published")
	}
	return s.find(ctx, task.ID)
}

// Delete removes a task. Administrators may delete any task, guides only their own.
func (s *TaskService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	task, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && !(actor.Role == models.RoleGuide && task.IsAssignedBy(actor.UserID)) {
		return appErrors.Clone(appErrors.ErrForbidden, "you can only delete tasks you assigned")
	}
	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		return lookupError(err, "Task not found")
	}
	if task.SubmittedFilePath != nil {
		s.removeFile(ctx, *task.SubmittedFilePath)
	}
	return nil
}

func (s *TaskService) find(ctx context.Context, id string) (*models.Task, error) {
	if id = canonicalID(id); id == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Task not found")
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Task not found")
	}
	return task, nil
}

func (s *TaskService) removeFile(ctx context.Context, path string) {
	key := strings.TrimPrefix(path, UploadPathPrefix)
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.Warn("failed to remove submission file", zap.String("key", key), zap.Error(err))
	}
}
