package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/fyp-manager-api/internal/dto"
	"github.com/noah-isme/fyp-manager-api/internal/models"
	"github.com/noah-isme/fyp-manager-api/internal/repository"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
)

type groupRepository interface {
	Create(ctx context.Context, group *models.Group, members []models.GroupMember) error
	FindByID(ctx context.Context, id string) (*models.GroupDetail, error)
	List(ctx context.Context, scope models.GroupScope) ([]models.GroupDetail, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	MembersInAnyGroup(ctx context.Context, studentIDs []string) ([]string, error)
	Update(ctx context.Context, id string, groupName, topicName *string) error
	Assign(ctx context.Context, groupID, guideID string) error
	AddRejection(ctx context.Context, groupID, guideID string) error
}

type groupPrincipalLookup interface {
	FindByIDAndRole(ctx context.Context, id string, role models.UserRole) (*models.Principal, error)
	List(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, error)
}

// GroupService implements the group lifecycle: students form groups, guides
// accept or decline them.
type GroupService struct {
	groups     groupRepository
	principals groupPrincipalLookup
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewGroupService constructs a GroupService.
func NewGroupService(groups groupRepository, principals groupPrincipalLookup, metrics *MetricsService, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{groups: groups, principals: principals, metrics: metrics, logger: logger}
}

// Create forms a group on behalf of a student. Every check runs before the
// single transactional insert.
func (s *GroupService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateGroupRequest) (*models.GroupDetail, error) {
	if actor == nil || actor.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can create groups")
	}

	name := strings.TrimSpace(req.GroupName)
	topic := strings.TrimSpace(req.TopicName)
	if name == "" {
		return nil, appErrors.Validation("Group name is required")
	}
	if topic == "" {
		return nil, appErrors.Validation("Topic name is required")
	}

	refs := req.IncomingMembers()
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		key := strings.TrimSpace(ref.Key())
		if key == "" {
			continue
		}
		id := canonicalID(key)
		if id == "" {
			return nil, appErrors.Validation(fmt.Sprintf("Invalid member id: %s", key))
		}
		ids = append(ids, id)
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, appErrors.Validation("At least one member is required")
	}

	students, err := s.principals.List(ctx, models.PrincipalFilter{Role: models.RoleStudent, IDs: ids})
	if err != nil {
		return nil, internalError(err, "failed to load members")
	}
	byID := make(map[string]models.Principal, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}
	members := make([]models.GroupMember, 0, len(ids))
	for _, id := range ids {
		st, ok := byID[id]
		if !ok {
			return nil, appErrors.Validation(fmt.Sprintf("Student not found: %s", id))
		}
		members = append(members, models.GroupMember{ID: st.ID, Name: st.Name})
	}

	taken, err := s.groups.MembersInAnyGroup(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to check memberships")
	}
	if len(taken) > 0 {
		return nil, appErrors.Validation(fmt.Sprintf("%s is already in a group", byID[taken[0]].Name))
	}

	exists, err := s.groups.ExistsByName(ctx, name, "")
	if err != nil {
		return nil, internalError(err, "failed to check group name")
	}
	if exists {
		return nil, appErrors.Validation("Group name already exists")
	}

	group := &models.Group{
		GroupName:  name,
		TopicName:  topic,
		Department: actor.Department,
		Status:     models.GroupStatusPending,
		CreatedBy:  models.StringPtr(actor.UserID),
	}
	if err := s.groups.Create(ctx, group, members); err != nil {
		if constraint, ok := repository.UniqueViolation(err); ok {
			if strings.Contains(constraint, "name") {
				return nil, appErrors.Validation("Group name already exists")
			}
			return nil, appErrors.Validation("One or more members already belong to a group")
		}
		return nil, internalError(err, "failed to create group")
	}

	s.metrics.GroupCreated()
	s.logger.Info("group created", zap.String("group_id", group.ID), zap.Int("members", len(members)))
	return &models.GroupDetail{Group: *group, SelectedMembers: members, RejectedTeachers: []string{}}, nil
}

// List returns the groups visible to actor. Students see the groups they belong
// to; guides see groups assigned to them plus pending, unassigned groups of
// their department they have not declined; administrators see everything.
func (s *GroupService) List(ctx context.Context, actor *models.JWTClaims) ([]dto.GroupView, error) {
	scope, err := groupScope(actor)
	if err != nil {
		return nil, err
	}
	groups, err := s.groups.List(ctx, scope)
	if err != nil {
		return nil, internalError(err, "failed to list groups")
	}
	views := make([]dto.GroupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, toGroupView(g, actor))
	}
	return views, nil
}

// Get returns a single group when actor may see it.
func (s *GroupService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*dto.GroupView, error) {
	group, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewGroup(actor, group) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Group not found")
	}
	view := toGroupView(*group, actor)
	return &view, nil
}

// Edit renames a group or changes its topic. Omitted fields are left as is.
func (s *GroupService) Edit(ctx context.Context, actor *models.JWTClaims, id string, req dto.EditGroupRequest) (*models.GroupDetail, error) {
	group, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(actor.Role == models.RoleStudent && group.IsMember(actor.UserID)) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only group members can edit the group")
	}

	name := trimmedPtr(req.NewName())
	topic := trimmedPtr(req.TopicName)
	if name != nil && *name == "" {
		return nil, appErrors.Validation("Group name cannot be empty")
	}
	if topic != nil && *topic == "" {
		return nil, appErrors.Validation("Topic name cannot be empty")
	}
	if name == nil && topic == nil {
		return group, nil
	}
	if name != nil {
		exists, err := s.groups.ExistsByName(ctx, *name, group.ID)
		if err != nil {
			return nil, internalError(err, "failed to check group name")
		}
		if exists {
			return nil, appErrors.Validation("Group name already exists")
		}
	}

	if err := s.groups.Update(ctx, group.ID, name, topic); err != nil {
		if _, ok := repository.UniqueViolation(err); ok {
			return nil, appErrors.Validation("Group name already exists")
		}
		return nil, lookupError(err, "Group not found")
	}
	return s.find(ctx, group.ID)
}

// Assign sets the group's guide and marks it accepted. A guide can only assign
// themselves and cannot take over a group accepted by someone else; an
// administrator can assign any guide.
func (s *GroupService) Assign(ctx context.Context, actor *models.JWTClaims, req dto.AssignGroupRequest) (*models.GroupDetail, error) {
	guideID := strings.TrimSpace(req.GuideID)
	if canonical := canonicalID(guideID); canonical != "" {
		guideID = canonical
	}
	switch {
	case actor.Role == models.RoleGuide:
		if guideID == "" {
			guideID = actor.UserID
		}
		if guideID != actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "guides can only assign themselves")
		}
	case actor.IsAdmin():
		if guideID == "" {
			return nil, appErrors.Validation("guideId is required")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only guides and administrators can assign groups")
	}

	group, err := s.find(ctx, strings.TrimSpace(req.TargetGroupID()))
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleGuide {
		if !strings.EqualFold(group.Department, actor.Department) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "group belongs to another department")
		}
		if group.TeacherID != nil && *group.TeacherID != actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Group already assigned to another guide")
		}
	} else {
		if guideID = canonicalID(guideID); guideID == "" {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Guide not found")
		}
		if _, err := s.principals.FindByIDAndRole(ctx, guideID, models.RoleGuide); err != nil {
			return nil, lookupError(err, "Guide not found")
		}
	}

	if err := s.groups.Assign(ctx, group.ID, guideID); err != nil {
		return nil, lookupError(err, "Group not found")
	}
	s.metrics.GroupAssigned()
	s.logger.Info("group assigned", zap.String("group_id", group.ID), zap.String("guide_id", guideID))
	return s.find(ctx, group.ID)
}

// Reject records that the guide declined the group. Declining twice is a no-op.
func (s *GroupService) Reject(ctx context.Context, actor *models.JWTClaims, id string) (*models.GroupDetail, error) {
	if actor == nil || actor.Role != models.RoleGuide {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only guides can reject groups")
	}
	group, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.groups.AddRejection(ctx, group.ID, actor.UserID); err != nil {
		return nil, internalError(err, "failed to reject group")
	}
	return s.find(ctx, group.ID)
}

func (s *GroupService) find(ctx context.Context, id string) (*models.GroupDetail, error) {
	if id = canonicalID(id); id == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Group not found")
	}
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Group not found")
	}
	return group, nil
}

func groupScope(actor *models.JWTClaims) (models.GroupScope, error) {
	if actor == nil {
		return models.GroupScope{}, appErrors.ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleAdmin:
		return models.GroupScope{All: true}, nil
	case models.RoleGuide:
		return models.GroupScope{GuideID: actor.UserID, Department: actor.Department}, nil
	case models.RoleStudent:
		return models.GroupScope{MemberID: actor.UserID}, nil
	}
	return models.GroupScope{}, appErrors.ErrForbidden
}

func canViewGroup(actor *models.JWTClaims, group *models.GroupDetail) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStudent:
		return group.IsMember(actor.UserID)
	case models.RoleGuide:
		if group.TeacherID != nil {
			return *group.TeacherID == actor.UserID
		}
		if !strings.EqualFold(group.Department, actor.Department) || group.Status != models.GroupStatusPending {
			return false
		}
		for _, id := range group.RejectedTeachers {
			if id == actor.UserID {
				return false
			}
		}
		return true
	}
	return false
}

func toGroupView(group models.GroupDetail, actor *models.JWTClaims) dto.GroupView {
	if group.SelectedMembers == nil {
		group.SelectedMembers = []models.GroupMember{}
	}
	if group.RejectedTeachers == nil {
		group.RejectedTeachers = []string{}
	}
	assigned := actor != nil && group.TeacherID != nil && *group.TeacherID == actor.UserID
	return dto.GroupView{GroupDetail: group, AssignedToViewer: assigned}
}
