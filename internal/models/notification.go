package models

import "time"

// NotificationType records the audience a notification was written for.
type NotificationType string

const (
	NotificationTypeAdmin    NotificationType = "admin"
	NotificationTypeTeachers NotificationType = "teachers"
	NotificationTypeStudents NotificationType = "students"
)

// Notification is immutable once created. Recipients hold references in their inbox.
type Notification struct {
	ID        string           `db:"id" json:"_id"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	CreatedBy *string          `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

// RecipientSelector describes who receives a notification: every principal of
// Role, or only the listed ids when IDs is not empty.
type RecipientSelector struct {
	Role UserRole `json:"role"`
	IDs  []string `json:"ids,omitempty"`
}
