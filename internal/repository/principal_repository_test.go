package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fyp-manager-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	t.Cleanup(func() { _ = sqlxDB.Close() })
	return sqlxDB, mock
}

var principalRowColumns = []string{"id", "role", "name", "email", "username", "department", "roll_no", "year", "specialization", "status", "created_at", "updated_at"}

func TestPrincipalRepositoryFindByEmail(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPrincipalRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM principals WHERE lower\(email\) = lower\(\$1\)\s+ORDER BY CASE role`).
		WithArgs("guide@college.edu").
		WillReturnRows(sqlmock.NewRows(principalRowColumns).
			AddRow("p-1", "Guide", "Dr. Rao", "guide@college.edu", nil, "CSE", nil, nil, "AI", models.StatusActive, now, now))

	principal, err := repo.FindByEmail(context.Background(), "  guide@college.edu ")
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuide, principal.Role)
	assert.Equal(t, "AI", models.StringValue(principal.Specialization))
	assert.Nil(t, principal.RollNo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepositoryFindByEmailMissing(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectQuery(`FROM principals WHERE lower\(email\)`).
		WithArgs("nobody@college.edu").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@college.edu")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestPrincipalRepositoryListFilters(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPrincipalRepository(db)
	now := time.Now()

	mock.ExpectQuery(`WHERE 1=1 AND role = \$1 AND lower\(department\) = lower\(\$2\) AND id::text = ANY\(\$3\) ORDER BY name`).
		WithArgs(models.RoleStudent, "CSE", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(principalRowColumns).
			AddRow("s-1", "Student", "Asha", "asha@college.edu", nil, "CSE", "CS01", models.YearFinal, nil, models.StatusActive, now, now))

	items, err := repo.List(context.Background(), models.PrincipalFilter{Role: models.RoleStudent, Department: "CSE", IDs: []string{"s-1"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "CS01", models.StringValue(items[0].RollNo))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepositoryExistsByEmailExcludesSelf(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM principals WHERE lower\(email\) = lower\(\$1\) AND id <> \$2\)`).
		WithArgs("a@b.c", "p-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "a@b.c", "p-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPrincipalRepositoryCreateAssignsID(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectExec(`INSERT INTO principals`).WillReturnResult(sqlmock.NewResult(1, 1))

	principal := &models.Principal{Role: models.RoleAdmin, Name: "Root", Email: "root@college.edu", Status: models.StatusActive}
	require.NoError(t, repo.Create(context.Background(), principal))
	assert.NotEmpty(t, principal.ID)
	assert.False(t, principal.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepositoryCreateUniqueViolation(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectExec(`INSERT INTO principals`).WillReturnError(&pq.Error{Code: "23505", Constraint: "principals_email_key"})

	err := repo.Create(context.Background(), &models.Principal{Role: models.RoleStudent, Name: "Dup", Email: "dup@college.edu"})
	require.Error(t, err)
	constraint, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "principals_email_key", constraint)
}

func TestPrincipalRepositoryUpdateMissing(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectExec(`UPDATE principals SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Principal{ID: "p-9", Role: models.RoleGuide})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPrincipalRepositoryDelete(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectExec(`DELETE FROM principals WHERE id = \$1 AND role = \$2`).
		WithArgs("s-1", models.RoleStudent).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "s-1", models.RoleStudent))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepositoryDeleteGuideReleasesGroups(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE groups SET teacher_id = NULL, status = \$2, updated_at = \$3 WHERE teacher_id = \$1`).
		WithArgs("g-1", models.GroupStatusPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM principals WHERE id = \$1 AND role = \$2`).
		WithArgs("g-1", models.RoleGuide).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "g-1", models.RoleGuide))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepositoryDeleteMissingGuideRollsBack(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE groups SET teacher_id = NULL`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM principals`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "g-404", models.RoleGuide)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
