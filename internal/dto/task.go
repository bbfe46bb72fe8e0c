package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Date accepts RFC3339 timestamps as well as plain YYYY-MM-DD dates.
type Date struct {
	time.Time
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(raw []byte) error {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", value)
}

// AddTaskRequest creates a task for a group.
type AddTaskRequest struct {
	TaskName       string   `json:"taskName" validate:"required,max=200"`
	GroupID        string   `json:"groupId" validate:"required,uuid"`
	SubmissionDate *Date    `json:"submissionDate" validate:"required"`
	Type           string   `json:"type" validate:"omitempty,oneof='Normal Task' 'Final Task'"`
	Marks          *float64 `json:"marks" validate:"omitempty,gte=0"`
}

// ReviewTaskRequest records a guide's verdict.
type ReviewTaskRequest struct {
	Status string  `json:"status" validate:"required"`
	Remark *string `json:"remark" validate:"omitempty,max=2000"`
}

// PublishMarksRequest publishes the final mark of a task.
type PublishMarksRequest struct {
	FinalMark *float64 `json:"finalMark" validate:"required"`
}

// TaskUpload is a file received for a task submission.
type TaskUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.Reader
}
