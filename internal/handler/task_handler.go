package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fyp-manager-api/internal/dto"
	"github.com/noah-isme/fyp-manager-api/internal/middleware"
	"github.com/noah-isme/fyp-manager-api/internal/models"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
	"github.com/noah-isme/fyp-manager-api/pkg/response"
)

type taskService interface {
	Add(ctx context.Context, actor *models.JWTClaims, req dto.AddTaskRequest) (*models.Task, error)
	List(ctx context.Context, actor *models.JWTClaims, groupID string) ([]models.Task, error)
	Submit(ctx context.Context, actor *models.JWTClaims, id string, upload *dto.TaskUpload) (*models.Task, error)
	Review(ctx context.Context, actor *models.JWTClaims, id string, req dto.ReviewTaskRequest) (*models.Task, error)
	PublishFinalMarks(ctx context.Context, actor *models.JWTClaims, id string, req dto.PublishMarksRequest) (*models.Task, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
}

// multipartSlack covers boundaries and part headers around the submitted file.
const multipartSlack = 1 << 20

// TaskHandler exposes the task lifecycle.
type TaskHandler struct {
	service       taskService
	maxUploadBody int64
}

// NewTaskHandler constructs the handler. maxFileSize bounds submission uploads;
// zero or less falls back to 10MB.
func NewTaskHandler(service taskService, maxFileSize int64) *TaskHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 << 20
	}
	return &TaskHandler{service: service, maxUploadBody: maxFileSize + multipartSlack}
}

// Add godoc
// @Summary Add a task to a group
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body dto.AddTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Router /addTask [post]
func (h *TaskHandler) Add(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.AddTaskRequest
	if !bindJSON(c, &req, "invalid task payload") {
		return
	}
	task, err := h.service.Add(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, task.ID)
	response.Created(c, task)
}

// List godoc
// @Summary List tasks visible to the caller
// @Tags Tasks
// @Produce json
// @Param groupId query string false "Group ID"
// @Success 200 {object} response.Envelope
// @Router /getTask [get]
func (h *TaskHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	tasks, err := h.service.List(c.Request.Context(), claims, c.Query("groupId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, nil)
}

// Submit godoc
// @Summary Upload a submission file
// @Tags Tasks
// @Accept mpfd
// @Produce json
// @Param id path string true "Task ID"
// @Param file formData file true "Submission"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /submitTaskFile/{id} [put]
func (h *TaskHandler) Submit(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if c.Request.ContentLength > h.maxUploadBody {
		response.Error(c, appErrors.ErrFileTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBody)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.ErrFileTooLarge)
			return
		}
		response.Error(c, appErrors.Validation("File is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read uploaded file"))
		return
	}
	defer file.Close()

	upload := &dto.TaskUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: strings.TrimSpace(fileHeader.Header.Get("Content-Type")),
		Content:  file,
	}
	task, err := h.service.Submit(c.Request.Context(), claims, c.Param("id"), upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Review godoc
// @Summary Review a submission
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body dto.ReviewTaskRequest true "Verdict"
// @Success 200 {object} response.Envelope
// @Router /reviewTask/{id} [put]
func (h *TaskHandler) Review(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.ReviewTaskRequest
	if !bindJSON(c, &req, "invalid review payload") {
		return
	}
	task, err := h.service.Review(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// PublishFinalMarks godoc
// @Summary Publish the final mark of a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body dto.PublishMarksRequest true "Final mark"
// @Success 200 {object} response.Envelope
// @Router /publishFinalMarks/{id} [put]
func (h *TaskHandler) PublishFinalMarks(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.PublishMarksRequest
	if !bindJSON(c, &req, "invalid marks payload") {
		return
	}
	task, err := h.service.PublishFinalMarks(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Delete godoc
// @Summary Delete a task
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /deleteTask/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	deleted(c, "Task deleted successfully")
}
