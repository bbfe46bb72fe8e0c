package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fyp-manager-api/internal/models"
)

const taskSelect = `SELECT t.id, t.task_name, t.group_id, t.assigned_by, t.submission_date, t.type, t.marks, t.remark,
t.submitted_file_name, t.submitted_file_path, t.submitted_file_type, t.status, t.submitted_at, t.reviewed_at, t.verified_at,
t.created_at, t.updated_at,
COALESCE(ARRAY(SELECT ts.student_id::text FROM task_students ts WHERE ts.task_id = t.id), '{}') AS students
FROM tasks t`

// TaskRepository persists group tasks and their review state.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates the repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts the task and its denormalised student list.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) (err error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin task transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertTask = `INSERT INTO tasks (id, task_name, group_id, assigned_by, submission_date, type, marks, remark, status, created_at, updated_at)
VALUES (:id, :task_name, :group_id, :assigned_by, :submission_date, :type, :marks, :remark, :status, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertTask, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	const insertStudent = `INSERT INTO task_students (task_id, student_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, studentID := range task.Students {
		if _, err = tx.ExecContext(ctx, insertStudent, task.ID, studentID); err != nil {
			return fmt.Errorf("insert task student: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit task: %w", err)
	}
	return nil
}

// FindByID returns a task including its students.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.GetContext(ctx, &task, taskSelect+` WHERE t.id = $1`, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns tasks matching scope ordered by submission date. An empty scope lists everything.
func (r *TaskRepository) List(ctx context.Context, scope models.TaskScope) ([]models.Task, error) {
	query := taskSelect + ` WHERE 1=1`
	args := []interface{}{}
	if scope.StudentID != "" {
		args = append(args, scope.StudentID)
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM task_students s WHERE s.task_id = t.id AND s.student_id = $%d)", len(args))
	}
	if scope.AssignedBy != "" {
		args = append(args, scope.AssignedBy)
		query += fmt.Sprintf(" AND t.assigned_by = $%d", len(args))
	}
	if scope.GroupID != "" {
		args = append(args, scope.GroupID)
		query += fmt.Sprintf(" AND t.group_id = $%d", len(args))
	}
	query += " ORDER BY t.submission_date ASC NULLS LAST, t.created_at ASC"

	tasks := make([]models.Task, 0)
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Submit attaches the uploaded file and moves the task to Submitted.
func (r *TaskRepository) Submit(ctx context.Context, id string, file models.SubmissionFile) error {
	now := time.Now().UTC()
	const query = `UPDATE tasks SET submitted_file_name = $2, submitted_file_path = $3, submitted_file_type = $4,
status = $5, submitted_at = $6, updated_at = $6 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, file.Name, file.Path, file.Type, models.TaskStatusSubmitted, now)
	if err != nil {
		return fmt.Errorf("submit task: %w", err)
	}
	return requireAffected(res)
}

// Review stores the guide's remark, marks and status.
func (r *TaskRepository) Review(ctx context.Context, id, remark string, marks float64, status models.TaskStatus) error {
	now := time.Now().UTC()
	const query = `UPDATE tasks SET remark = $2, marks = $3, status = $4, reviewed_at = $5, updated_at = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, remark, marks, status, now)
	if err != nil {
		return fmt.Errorf("review task: %w", err)
	}
	return requireAffected(res)
}

// PublishFinalMark verifies the task unless it is already verified. It reports
// false when no row changed, leaving the caller to tell a missing task from a
// published one.
func (r *TaskRepository) PublishFinalMark(ctx context.Context, id string, mark float64) (bool, error) {
	now := time.Now().UTC()
	const query = `UPDATE tasks SET marks = $2, status = $3, verified_at = $4, updated_at = $4 WHERE id = $1 AND status <> $3`
	res, err := r.db.ExecContext(ctx, query, id, mark, models.TaskStatusVerified, now)
	if err != nil {
		return false, fmt.Errorf("publish final mark: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("publish final mark: %w", err)
	}
	return affected > 0, nil
}

// Delete removes the task.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
