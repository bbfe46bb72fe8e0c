package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fyp-manager-api/internal/models"
)

var taskRowColumns = []string{"id", "task_name", "group_id", "assigned_by", "submission_date", "type", "marks", "remark",
	"submitted_file_name", "submitted_file_path", "submitted_file_type", "status", "submitted_at", "reviewed_at", "verified_at",
	"created_at", "updated_at", "students"}

func TestTaskRepositoryCreate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO tasks`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO task_students`).WithArgs(sqlmock.AnyArg(), "s-1").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO task_students`).WithArgs(sqlmock.AnyArg(), "s-2").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	task := &models.Task{TaskName: "Design", GroupID: "g-1", Type: models.TaskTypeNormal, Students: pq.StringArray{"s-1", "s-2"}}
	require.NoError(t, repo.Create(context.Background(), task))
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryFindByID(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTaskRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM tasks t WHERE t.id = \$1`).
		WithArgs("task-1").
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow("task-1", "Design", "g-1", "t-1", now, string(models.TaskTypeNormal), 0.0, "",
				nil, nil, nil, string(models.TaskStatusPending), nil, nil, nil, now, now, "{s-1,s-2}"))

	task, err := repo.FindByID(context.Background(), "task-1")
	require.NoError(t, err)
	assert.True(t, task.HasStudent("s-2"))
	assert.True(t, task.IsAssignedBy("t-1"))
	assert.Nil(t, task.SubmittedFilePath)
}

func TestTaskRepositoryListForStudent(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery(`s.student_id = \$1\) ORDER BY t.submission_date ASC NULLS LAST`).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	tasks, err := repo.List(context.Background(), models.TaskScope{StudentID: "s-1"})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryListForGuideAndGroup(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery(`t.assigned_by = \$1 AND t.group_id = \$2`).
		WithArgs("t-1", "g-1").
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	_, err := repo.List(context.Background(), models.TaskScope{AssignedBy: "t-1", GroupID: "g-1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositorySubmitAndReview(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(`UPDATE tasks SET submitted_file_name = \$2`).
		WithArgs("task-1", "report.pdf", "uploads/report-1.pdf", "application/pdf", models.TaskStatusSubmitted, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tasks SET remark = \$2, marks = \$3, status = \$4, reviewed_at`).
		WithArgs("task-1", "good", 8.5, models.TaskStatusVerified, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Submit(context.Background(), "task-1", models.SubmissionFile{Name: "report.pdf", Path: "uploads/report-1.pdf", Type: "application/pdf"}))
	require.NoError(t, repo.Review(context.Background(), "task-1", "good", 8.5, models.TaskStatusVerified))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryPublishFinalMark(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(`UPDATE tasks SET marks = \$2, status = \$3, verified_at = \$4, updated_at = \$4 WHERE id = \$1 AND status <> \$3`).
		WithArgs("task-1", 42.0, models.TaskStatusVerified, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tasks SET marks`).
		WithArgs("task-1", 50.0, models.TaskStatusVerified, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.PublishFinalMark(context.Background(), "task-1", 42)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = repo.PublishFinalMark(context.Background(), "task-1", 50)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestTaskRepositoryDeleteMissing(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "gone"), sql.ErrNoRows)
}
