package dto

import "github.com/noah-isme/fyp-manager-api/internal/models"

// NotificationContent is the title/message pair shared by every send variant.
type NotificationContent struct {
	Title   string `json:"title" validate:"required,min=3,max=100"`
	Message string `json:"message" validate:"required,min=5,max=500"`
}

// TeacherNotificationRequest targets a list of guides.
type TeacherNotificationRequest struct {
	TeacherIDs      []string            `json:"teacherIds" validate:"required,min=1,dive,uuid"`
	NewNotification NotificationContent `json:"newNotification"`
}

// StudentNotificationRequest targets a list of students.
type StudentNotificationRequest struct {
	NotificationContent
	StudentIDs []string `json:"studentIds" validate:"required,min=1,dive,uuid"`
}

// GuideNotificationRequest is sent by a guide to students. It has no title.
type GuideNotificationRequest struct {
	Message    string   `json:"message" validate:"required,min=3,max=500"`
	StudentIDs []string `json:"studentIds" validate:"required,min=1,dive,uuid"`
}

// NotificationDetail is a notification with the size of its delivered audience.
type NotificationDetail struct {
	*models.Notification
	Recipients int `json:"recipients"`
}

// NotificationResult reports the outcome of the two step send.
type NotificationResult struct {
	Notification *models.Notification `json:"notification"`
	Delivered    bool                 `json:"delivered"`
	Recipients   int64                `json:"recipients"`
}
