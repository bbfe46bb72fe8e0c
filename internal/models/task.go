package models

import (
	"time"

	"github.com/lib/pq"
)

// TaskType distinguishes the final report from ordinary tasks.
type TaskType string

const (
	TaskTypeNormal TaskType = "Normal Task"
	TaskTypeFinal  TaskType = "Final Task"
)

// FinalReportTaskName upgrades a task to TaskTypeFinal.
const FinalReportTaskName = "Final Report Submission"

// TaskStatus drives the review state machine.
type TaskStatus string

const (
	TaskStatusPending       TaskStatus = "Pending"
	TaskStatusSubmitted     TaskStatus = "Submitted"
	TaskStatusNeedsResubmit TaskStatus = "Needs Resubmit"
	TaskStatusVerified      TaskStatus = "Verified"
)

// Valid reports whether the status is known.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusSubmitted, TaskStatusNeedsResubmit, TaskStatusVerified:
		return true
	}
	return false
}

// Task is a unit of work assigned to a group.
type Task struct {
	ID                string         `db:"id" json:"_id"`
	TaskName          string         `db:"task_name" json:"taskName"`
	GroupID           string         `db:"group_id" json:"groupId"`
	AssignedBy        *string        `db:"assigned_by" json:"assignedBy"`
	Students          pq.StringArray `db:"students" json:"students"`
	SubmissionDate    *time.Time     `db:"submission_date" json:"submissionDate"`
	Type              TaskType       `db:"type" json:"type"`
	Marks             float64        `db:"marks" json:"marks"`
	Remark            string         `db:"remark" json:"remark"`
	SubmittedFileName *string        `db:"submitted_file_name" json:"submittedFileName"`
	SubmittedFilePath *string        `db:"submitted_file_path" json:"submittedFilePath"`
	SubmittedFileType *string        `db:"submitted_file_type" json:"submittedFileType"`
	Status            TaskStatus     `db:"status" json:"status"`
	SubmittedAt       *time.Time     `db:"submitted_at" json:"submittedAt,omitempty"`
	ReviewedAt        *time.Time     `db:"reviewed_at" json:"reviewedAt,omitempty"`
	VerifiedAt        *time.Time     `db:"verified_at" json:"verifiedAt,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updatedAt"`
}

// TaskScope selects which tasks a viewer may list.
type TaskScope struct {
	StudentID  string
	AssignedBy string
	GroupID    string
}

// HasStudent reports whether the student is listed on the task.
func (t *Task) HasStudent(studentID string) bool {
	for _, id := range t.Students {
		if id == studentID {
			return true
		}
	}
	return false
}

// IsAssignedBy reports whether the principal created the task.
func (t *Task) IsAssignedBy(principalID string) bool {
	return t.AssignedBy != nil && *t.AssignedBy == principalID
}

// SubmissionFile describes a stored task submission.
type SubmissionFile struct {
	Name string
	Path string
	Type string
}
