package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/fyp-manager-api/internal/models"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
	"github.com/noah-isme/fyp-manager-api/pkg/export"
)

type markSheetTasks interface {
	List(ctx context.Context, scope models.TaskScope) ([]models.Task, error)
}

type markSheetGroups interface {
	FindByID(ctx context.Context, id string) (*models.GroupDetail, error)
}

type markSheetGuides interface {
	FindByIDAndRole(ctx context.Context, id string, role models.UserRole) (*models.Principal, error)
}

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

var markSheetHeaders = []string{"Task", "Type", "Deadline", "Status", "Marks", "Remark"}

// ExportService renders printable reports for a group.
type ExportService struct {
	groups markSheetGroups
	tasks  markSheetTasks
	guides markSheetGuides
	pdf    documentRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService. A nil renderer falls back to the PDF exporter.
func NewExportService(groups markSheetGroups, tasks markSheetTasks, guides markSheetGuides, pdf documentRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{groups: groups, tasks: tasks, guides: guides, pdf: pdf, logger: logger, now: time.Now}
}

// GroupMarkSheet renders the tasks of a group with their status and marks.
// Only administrators and the guide assigned to the group may export it.
func (s *ExportService) GroupMarkSheet(ctx context.Context, actor *models.JWTClaims, groupID string) ([]byte, string, error) {
	if groupID = canonicalID(groupID); groupID == "" {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "Group not found")
	}
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, "", lookupError(err, "Group not found")
	}
	if !actor.IsAdmin() && !(actor.Role == models.RoleGuide && group.TeacherID != nil && *group.TeacherID == actor.UserID) {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "only the assigned guide can export marks")
	}

	tasks, err := s.tasks.List(ctx, models.TaskScope{GroupID: group.ID})
	if err != nil {
		return nil, "", internalError(err, "failed to list tasks")
	}

	rows := make([]map[string]string, 0, len(tasks))
	var total float64
	for _, task := range tasks {
		total += task.Marks
		rows = append(rows, map[string]string{
			"Task":     task.TaskName,
			"Type":     string(task.Type),
			"Deadline": formatDate(task.SubmissionDate),
			"Status":   string(task.Status),
			"Marks":    strconv.FormatFloat(task.Marks, 'f', -1, 64),
			"Remark":   task.Remark,
		})
	}

	doc := export.Document{
		Title: "Mark Sheet",
		Details: [][2]string{
			{"Group", group.GroupName},
			{"Topic", group.TopicName},
			{"Department", group.Department},
			{"Guide", s.guideName(ctx, group.TeacherID)},
			{"Members", memberNames(group.SelectedMembers)},
			{"Total marks", strconv.FormatFloat(total, 'f', -1, 64)},
		},
		Data: export.Dataset{
			Headers: markSheetHeaders,
			Rows:    rows,
			Widths:  map[string]float64{"Task": 50, "Type": 25, "Deadline": 25, "Status": 28, "Marks": 17},
		},
		Footer: "Generated " + s.now().UTC().Format(time.RFC1123),
	}
	payload, err := s.pdf.Render(doc)
	if err != nil {
		return nil, "", internalError(err, "failed to render mark sheet")
	}
	return payload, markSheetFilename(group.GroupName), nil
}

func (s *ExportService) guideName(ctx context.Context, guideID *string) string {
	if guideID == nil || s.guides == nil {
		return "-"
	}
	guide, err := s.guides.FindByIDAndRole(ctx, *guideID, models.RoleGuide)
	if err != nil {
		s.logger.Warn("failed to resolve guide for mark sheet", zap.String("guide_id", *guideID), zap.Error(err))
		return "-"
	}
	return guide.Name
}

func memberNames(members []models.GroupMember) string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

func markSheetFilename(groupName string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	name := strings.Trim(replacer.Replace(strings.ToLower(groupName)), "._-")
	if name == "" {
		name = "group"
	}
	if len(name) > 60 {
		name = name[:60]
	}
	return fmt.Sprintf("marks_%s.pdf", name)
}
