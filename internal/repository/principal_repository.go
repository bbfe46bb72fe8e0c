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

const principalColumns = `id, role, name, email, username, department, roll_no, year, specialization, status, created_at, updated_at`

// PrincipalRepository persists admins, guides and students in one table.
type PrincipalRepository struct {
	db *sqlx.DB
}

// NewPrincipalRepository creates the repository.
func NewPrincipalRepository(db *sqlx.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

// FindByEmail resolves an email to a principal. When the same address exists
// under several roles the admin record wins, then the guide, then the student.
func (r *PrincipalRepository) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE lower(email) = lower($1)
ORDER BY CASE role WHEN 'admin' THEN 0 WHEN 'Guide' THEN 1 ELSE 2 END
LIMIT 1`
	var principal models.Principal
	if err := r.db.GetContext(ctx, &principal, query, strings.TrimSpace(email)); err != nil {
		return nil, err
	}
	return &principal, nil
}

// FindByID returns a principal by identifier.
func (r *PrincipalRepository) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE id = $1`
	var principal models.Principal
	if err := r.db.GetContext(ctx, &principal, query, id); err != nil {
		return nil, err
	}
	return &principal, nil
}

// FindByIDAndRole returns the principal only when it carries the given role.
func (r *PrincipalRepository) FindByIDAndRole(ctx context.Context, id string, role models.UserRole) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE id = $1 AND role = $2`
	var principal models.Principal
	if err := r.db.GetContext(ctx, &principal, query, id, role); err != nil {
		return nil, err
	}
	return &principal, nil
}

// List returns principals matching the filter ordered by name.
func (r *PrincipalRepository) List(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Role != "" {
		args = append(args, filter.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		where = append(where, fmt.Sprintf("lower(department) = lower($%d)", len(args)))
	}
	if filter.IDs != nil {
		args = append(args, pqStringArray(filter.IDs))
		where = append(where, fmt.Sprintf("id::text = ANY($%d)", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM principals WHERE %s ORDER BY name ASC, created_at ASC`, principalColumns, strings.Join(where, " AND "))
	principals := make([]models.Principal, 0)
	if err := r.db.SelectContext(ctx, &principals, query, args...); err != nil {
		return nil, fmt.Errorf("list principals: %w", err)
	}
	return principals, nil
}

// CountByRole counts principals with the role.
func (r *PrincipalRepository) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM principals WHERE role = $1`, role); err != nil {
		return 0, fmt.Errorf("count principals: %w", err)
	}
	return total, nil
}

// ExistsByEmail checks email uniqueness across every role.
func (r *PrincipalRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, "lower(email) = lower($1)", strings.TrimSpace(email), excludeID)
}

// ExistsByUsername checks username uniqueness across every role.
func (r *PrincipalRepository) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	return r.exists(ctx, "username = $1", strings.TrimSpace(username), excludeID)
}

// ExistsByRollNo checks roll number uniqueness.
func (r *PrincipalRepository) ExistsByRollNo(ctx context.Context, rollNo, excludeID string) (bool, error) {
	return r.exists(ctx, "roll_no = $1", strings.TrimSpace(rollNo), excludeID)
}

func (r *PrincipalRepository) exists(ctx context.Context, predicate, value, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM principals WHERE ` + predicate
	args := []interface{}{value}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	query += `)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check principal uniqueness: %w", err)
	}
	return exists, nil
}

// Create inserts a new principal.
func (r *PrincipalRepository) Create(ctx context.Context, principal *models.Principal) error {
	if principal.ID == "" {
		principal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if principal.CreatedAt.IsZero() {
		principal.CreatedAt = now
	}
	principal.UpdatedAt = now
	query := `INSERT INTO principals (` + principalColumns + `)
VALUES (:id, :role, :name, :email, :username, :department, :roll_no, :year, :specialization, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, principal); err != nil {
		return fmt.Errorf("create principal: %w", err)
	}
	return nil
}

// Update modifies an existing principal. The role is immutable.
func (r *PrincipalRepository) Update(ctx context.Context, principal *models.Principal) error {
	principal.UpdatedAt = time.Now().UTC()
	query := `UPDATE principals SET name = :name, email = :email, username = :username, department = :department,
roll_no = :roll_no, year = :year, specialization = :specialization, status = :status, updated_at = :updated_at
WHERE id = :id AND role = :role`
	res, err := r.db.NamedExecContext(ctx, query, principal)
	if err != nil {
		return fmt.Errorf("update principal: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a principal of the given role.
func (r *PrincipalRepository) Delete(ctx context.Context, id string, role models.UserRole) error {
	if role == models.RoleGuide {
		return r.deleteGuide(ctx, id)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM principals WHERE id = $1 AND role = $2`, id, role)
	if err != nil {
		return fmt.Errorf("delete principal: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// deleteGuide returns the guide's accepted groups to the pending pool before
// removing the guide, so other guides of the department can pick them up.
func (r *PrincipalRepository) deleteGuide(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin guide delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const release = `UPDATE groups SET teacher_id = NULL, status = $2, updated_at = $3 WHERE teacher_id = $1`
	if _, err = tx.ExecContext(ctx, release, id, models.GroupStatusPending, time.Now().UTC()); err != nil {
		return fmt.Errorf("release guide groups: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM principals WHERE id = $1 AND role = $2`, id, models.RoleGuide)
	if err != nil {
		return fmt.Errorf("delete principal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete principal: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit guide delete: %w", err)
	}
	return nil
}
