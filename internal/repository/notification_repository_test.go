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

var notificationRowColumns = []string{"id", "title", "message", "type", "created_by", "created_at"}

func TestNotificationRepositoryCreate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectExec(`INSERT INTO notifications`).WillReturnResult(sqlmock.NewResult(1, 1))

	n := &models.Notification{Title: "Viva", Message: "Viva next week", Type: models.NotificationTypeStudents}
	require.NoError(t, repo.Create(context.Background(), n))
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
}

func TestNotificationRepositoryDistributeToRole(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectExec(`(?s)INSERT INTO notification_recipients .* WHERE p.role = \$3 ON CONFLICT \(notification_id, principal_id\) DO NOTHING`).
		WithArgs("n-1", sqlmock.AnyArg(), models.RoleGuide).
		WillReturnResult(sqlmock.NewResult(0, 4))

	delivered, err := repo.Distribute(context.Background(), "n-1", models.RecipientSelector{Role: models.RoleGuide})
	require.NoError(t, err)
	assert.Equal(t, int64(4), delivered)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryDistributeToSelected(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectExec(`WHERE p.role = \$3 AND p.id::text = ANY\(\$4\) ON CONFLICT`).
		WithArgs("n-1", sqlmock.AnyArg(), models.RoleStudent, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	delivered, err := repo.Distribute(context.Background(), "n-1", models.RecipientSelector{Role: models.RoleStudent, IDs: []string{"s-1", "s-1"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), delivered)
}

func TestNotificationRepositoryListForPrincipal(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewNotificationRepository(db)
	now := time.Now()

	mock.ExpectQuery(`JOIN notification_recipients nr ON nr.notification_id = n.id\s+WHERE nr.principal_id = \$1`).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(notificationRowColumns).
			AddRow("n-2", "Viva", "Viva next week", "students", "a-1", now).
			AddRow("n-1", "", "Welcome", "admin", nil, now.Add(-time.Hour)))

	items, err := repo.ListForPrincipal(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "n-2", items[0].ID)
	assert.Nil(t, items[1].CreatedBy)
}

func TestNotificationRepositoryList(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(`FROM notifications n ORDER BY n.created_at DESC`).
		WillReturnRows(sqlmock.NewRows(notificationRowColumns))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNotificationRepositoryFindByID(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(`FROM notifications n WHERE n.id = \$1`).
		WithArgs("n-1").
		WillReturnRows(sqlmock.NewRows(notificationRowColumns).AddRow("n-1", "Viva", "Viva next week", "students", "a-1", time.Now()))

	item, err := repo.FindByID(context.Background(), "n-1")
	require.NoError(t, err)
	assert.Equal(t, "Viva", item.Title)

	mock.ExpectQuery(`FROM notifications n WHERE n.id = \$1`).
		WithArgs("n-2").
		WillReturnRows(sqlmock.NewRows(notificationRowColumns))

	_, err = repo.FindByID(context.Background(), "n-2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNotificationRepositoryCountRecipients(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notification_recipients WHERE notification_id = \$1`).
		WithArgs("n-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountRecipients(context.Background(), "n-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
