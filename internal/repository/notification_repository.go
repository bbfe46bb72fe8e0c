package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fyp-manager-api/internal/models"
)

const notificationColumns = `n.id, n.title, n.message, n.type, n.created_by, n.created_at`

// NotificationRepository stores notifications and their recipient inboxes.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts the notification record.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, title, message, type, created_by, created_at)
VALUES (:id, :title, :message, :type, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// Distribute adds the notification to every principal matched by selector and
// returns how many inbox entries were added. Existing entries are kept as is.
func (r *NotificationRepository) Distribute(ctx context.Context, notificationID string, selector models.RecipientSelector) (int64, error) {
	query := `INSERT INTO notification_recipients (notification_id, principal_id, delivered_at)
SELECT $1, p.id, $2 FROM principals p WHERE p.role = $3`
	args := []interface{}{notificationID, time.Now().UTC(), selector.Role}
	if len(selector.IDs) > 0 {
		query += ` AND p.id::text = ANY($4)`
		args = append(args, pqStringArray(selector.IDs))
	}
	query += ` ON CONFLICT (notification_id, principal_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("distribute notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("distribute notification: %w", err)
	}
	return affected, nil
}

// CountRecipients returns the inbox size of the notification.
func (r *NotificationRepository) CountRecipients(ctx context.Context, notificationID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notification_recipients WHERE notification_id = $1`, notificationID); err != nil {
		return 0, fmt.Errorf("count notification recipients: %w", err)
	}
	return count, nil
}

// List returns every notification, newest first.
func (r *NotificationRepository) List(ctx context.Context) ([]models.Notification, error) {
	items := make([]models.Notification, 0)
	query := `SELECT ` + notificationColumns + ` FROM notifications n ORDER BY n.created_at DESC`
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// ListForPrincipal returns the principal's inbox, newest first.
func (r *NotificationRepository) ListForPrincipal(ctx context.Context, principalID string) ([]models.Notification, error) {
	items := make([]models.Notification, 0)
	query := `SELECT ` + notificationColumns + ` FROM notifications n
JOIN notification_recipients nr ON nr.notification_id = n.id
WHERE nr.principal_id = $1 ORDER BY n.created_at DESC`
	if err := r.db.SelectContext(ctx, &items, query, principalID); err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return items, nil
}

// FindByID returns a single notification.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	var item models.Notification
	if err := r.db.GetContext(ctx, &item, `SELECT `+notificationColumns+` FROM notifications n WHERE n.id = $1`, id); err != nil {
		return nil, err
	}
	return &item, nil
}
