package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fyp-manager-api/internal/models"
)

const groupSelect = `SELECT g.id, g.group_name, g.topic_name, g.department, g.status, g.teacher_id, g.created_by, g.created_at, g.updated_at,
COALESCE(ARRAY(SELECT r.guide_id::text FROM group_rejections r WHERE r.group_id = g.id ORDER BY r.rejected_at), '{}') AS rejected_teachers
FROM groups g`

// GroupRepository persists project groups, their members and guide rejections.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates the repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts the group and its members in one transaction. The unique index on
// group_members.student_id rejects a student joining two groups concurrently.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group, members []models.GroupMember) (err error) {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now
	if group.Status == "" {
		group.Status = models.GroupStatusPending
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin group transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertGroup = `INSERT INTO groups (id, group_name, topic_name, department, status, teacher_id, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err = tx.ExecContext(ctx, insertGroup, group.ID, group.GroupName, group.TopicName, group.Department, group.Status,
		group.TeacherID, group.CreatedBy, group.CreatedAt, group.UpdatedAt); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	const insertMember = `INSERT INTO group_members (group_id, student_id, position) VALUES ($1, $2, $3)`
	for i, member := range members {
		if _, err = tx.ExecContext(ctx, insertMember, group.ID, member.ID, i); err != nil {
			return fmt.Errorf("insert group member: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit group: %w", err)
	}
	return nil
}

// FindByID returns the group with members and rejections.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.GroupDetail, error) {
	var detail models.GroupDetail
	if err := r.db.GetContext(ctx, &detail, groupSelect+` WHERE g.id = $1`, id); err != nil {
		return nil, err
	}
	groups := []models.GroupDetail{detail}
	if err := r.attachMembers(ctx, groups); err != nil {
		return nil, err
	}
	return &groups[0], nil
}

// List returns the groups visible within scope, newest first.
func (r *GroupRepository) List(ctx context.Context, scope models.GroupScope) ([]models.GroupDetail, error) {
	where := []string{}
	args := []interface{}{}
	switch {
	case scope.All:
	case scope.MemberID != "":
		args = append(args, scope.MemberID)
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM group_members m WHERE m.group_id = g.id AND m.student_id = $%d)", len(args)))
	case scope.GuideID != "":
		args = append(args, scope.GuideID, scope.Department, models.GroupStatusPending)
		where = append(where, `(g.teacher_id = $1 OR (lower(g.department) = lower($2) AND g.status = $3 AND g.teacher_id IS NULL
AND NOT EXISTS (SELECT 1 FROM group_rejections r WHERE r.group_id = g.id AND r.guide_id = $1)))`)
	default:
		return []models.GroupDetail{}, nil
	}

	query := groupSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY g.created_at DESC"

	groups := make([]models.GroupDetail, 0)
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	if err := r.attachMembers(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GroupRepository) attachMembers(ctx context.Context, groups []models.GroupDetail) error {
	if len(groups) == 0 {
		return nil
	}
	ids := make([]string, len(groups))
	index := make(map[string]int, len(groups))
	for i := range groups {
		ids[i] = groups[i].ID
		index[groups[i].ID] = i
		groups[i].SelectedMembers = []models.GroupMember{}
	}

	const query = `SELECT gm.group_id, gm.student_id, p.name FROM group_members gm
JOIN principals p ON p.id = gm.student_id
WHERE gm.group_id::text = ANY($1) ORDER BY gm.group_id, gm.position`
	var rows []struct {
		GroupID string `db:"group_id"`
		models.GroupMember
	}
	if err := r.db.SelectContext(ctx, &rows, query, pqStringArray(ids)); err != nil {
		return fmt.Errorf("load group members: %w", err)
	}
	for _, row := range rows {
		if i, ok := index[row.GroupID]; ok {
			groups[i].SelectedMembers = append(groups[i].SelectedMembers, row.GroupMember)
		}
	}
	return nil
}

// ExistsByName checks group name uniqueness ignoring case.
func (r *GroupRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM groups WHERE lower(group_name) = lower($1)`
	args := []interface{}{strings.TrimSpace(name)}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	query += `)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check group name: %w", err)
	}
	return exists, nil
}

// MembersInAnyGroup returns which of the students already belong to a group.
func (r *GroupRepository) MembersInAnyGroup(ctx context.Context, studentIDs []string) ([]string, error) {
	if len(studentIDs) == 0 {
		return []string{}, nil
	}
	taken := make([]string, 0)
	const query = `SELECT student_id::text FROM group_members WHERE student_id::text = ANY($1)`
	if err := r.db.SelectContext(ctx, &taken, query, pqStringArray(studentIDs)); err != nil {
		return nil, fmt.Errorf("check group membership: %w", err)
	}
	return taken, nil
}

// Update applies a partial update. Nil fields are left untouched.
func (r *GroupRepository) Update(ctx context.Context, id string, groupName, topicName *string) error {
	const query = `UPDATE groups SET group_name = COALESCE($2, group_name), topic_name = COALESCE($3, topic_name), updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, groupName, topicName, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Assign sets the guide and marks the group accepted.
func (r *GroupRepository) Assign(ctx context.Context, groupID, guideID string) error {
	const query = `UPDATE groups SET teacher_id = $2, status = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, groupID, guideID, models.GroupStatusAccepted, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("assign group: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddRejection records that the guide declined the group. Repeated calls are no-ops.
func (r *GroupRepository) AddRejection(ctx context.Context, groupID, guideID string) error {
	const query = `INSERT INTO group_rejections (group_id, guide_id, rejected_at) VALUES ($1, $2, $3)
ON CONFLICT (group_id, guide_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, groupID, guideID, time.Now().UTC()); err != nil {
		return fmt.Errorf("reject group: %w", err)
	}
	return nil
}
