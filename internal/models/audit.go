package models

import "time"

// Audit actions recorded for mutating operations.
const (
	AuditActionLogin              = "LOGIN"
	AuditActionLogout             = "LOGOUT"
	AuditActionSignup             = "SIGNUP"
	AuditActionDepartmentCreate   = "DEPARTMENT_CREATE"
	AuditActionDepartmentUpdate   = "DEPARTMENT_UPDATE"
	AuditActionDepartmentDelete   = "DEPARTMENT_DELETE"
	AuditActionStudentCreate      = "STUDENT_CREATE"
	AuditActionStudentUpdate      = "STUDENT_UPDATE"
	AuditActionStudentDelete      = "STUDENT_DELETE"
	AuditActionGuideCreate        = "GUIDE_CREATE"
	AuditActionGuideUpdate        = "GUIDE_UPDATE"
	AuditActionGuideDelete        = "GUIDE_DELETE"
	AuditActionGroupCreate        = "GROUP_CREATE"
	AuditActionGroupUpdate        = "GROUP_UPDATE"
	AuditActionGroupAssign        = "GROUP_ASSIGN"
	AuditActionGroupReject        = "GROUP_REJECT"
	AuditActionTaskCreate         = "TASK_CREATE"
	AuditActionTaskSubmit         = "TASK_SUBMIT"
	AuditActionTaskReview         = "TASK_REVIEW"
	AuditActionTaskPublish        = "TASK_PUBLISH_MARKS"
	AuditActionTaskDelete         = "TASK_DELETE"
	AuditActionNotificationCreate = "NOTIFICATION_CREATE"
)

// AuditLog represents an audit trail record stored in MongoDB.
type AuditLog struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	ActorID    *string   `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	ActorRole  UserRole  `bson:"actor_role,omitempty" json:"actor_role,omitempty"`
	Action     string    `bson:"action" json:"action"`
	Resource   string    `bson:"resource" json:"resource"`
	ResourceID *string   `bson:"resource_id,omitempty" json:"resource_id,omitempty"`
	Method     string    `bson:"method,omitempty" json:"method,omitempty"`
	Path       string    `bson:"path,omitempty" json:"path,omitempty"`
	Status     int       `bson:"status,omitempty" json:"status,omitempty"`
	LatencyMs  int64     `bson:"latency_ms,omitempty" json:"latency_ms,omitempty"`
	Details    string    `bson:"details,omitempty" json:"details,omitempty"`
	IPAddress  string    `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent  string    `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// AuditFilter narrows audit queries.
type AuditFilter struct {
	ActorID  string
	Resource string
	Limit    int64
}
