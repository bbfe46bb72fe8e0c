package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fyp-manager-api/internal/models"
)

func TestDepartmentRepositoryList(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewDepartmentRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, name, code, description, created_at, updated_at FROM departments ORDER BY code`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "description", "created_at", "updated_at"}).
			AddRow("d-1", "Computer Science", "CSE", "", now, now).
			AddRow("d-2", "Mechanical", "ME", "Workshops", now, now))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "CSE", items[0].Code)
}

func TestDepartmentRepositoryExistsByCode(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewDepartmentRepository(db)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM departments WHERE upper\(code\) = upper\(\$1\)\)`).
		WithArgs("cse").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsByCode(context.Background(), "cse", "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDepartmentRepositoryCreateAndUpdate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewDepartmentRepository(db)

	mock.ExpectExec(`INSERT INTO departments`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE departments SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	dept := &models.Department{Name: "Civil", Code: "CE"}
	require.NoError(t, repo.Create(context.Background(), dept))
	assert.NotEmpty(t, dept.ID)

	err := repo.Update(context.Background(), &models.Department{ID: "missing", Name: "x", Code: "X"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentRepositoryDelete(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewDepartmentRepository(db)

	mock.ExpectExec(`DELETE FROM departments WHERE id = \$1`).WithArgs("d-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "d-1"))
}
