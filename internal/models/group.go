package models

import (
	"time"

	"github.com/lib/pq"
)

// GroupStatus tracks the assignment state machine.
type GroupStatus string

const (
	GroupStatusPending  GroupStatus = "Pending acceptance"
	GroupStatusAccepted GroupStatus = "Accepted"
)

// Group is a student project team.
type Group struct {
	ID         string      `db:"id" json:"_id"`
	GroupName  string      `db:"group_name" json:"groupName"`
	TopicName  string      `db:"topic_name" json:"topicName"`
	Department string      `db:"department" json:"department"`
	Status     GroupStatus `db:"status" json:"status"`
	TeacherID  *string     `db:"teacher_id" json:"teacherId"`
	CreatedBy  *string     `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updatedAt"`
}

// GroupMember is a denormalised member reference.
type GroupMember struct {
	ID   string `db:"student_id" json:"_id"`
	Name string `db:"name" json:"name"`
}

// GroupDetail is a group with its members and rejecting guides.
type GroupDetail struct {
	Group
	SelectedMembers  []GroupMember  `db:"-" json:"selectedMembers"`
	RejectedTeachers pq.StringArray `db:"rejected_teachers" json:"rejectedTeachers"`
}

// GroupScope selects which groups a viewer may list.
type GroupScope struct {
	MemberID   string
	Department string
	GuideID    string
	All        bool
}

// IsMember reports whether the student belongs to the group.
func (g *GroupDetail) IsMember(studentID string) bool {
	for _, m := range g.SelectedMembers {
		if m.ID == studentID {
			return true
		}
	}
	return false
}

// MemberIDs returns the ids of the selected members in order.
func (g *GroupDetail) MemberIDs() []string {
	ids := make([]string, 0, len(g.SelectedMembers))
	for _, m := range g.SelectedMembers {
		ids = append(ids, m.ID)
	}
	return ids
}
