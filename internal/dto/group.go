package dto

import "github.com/noah-isme/fyp-manager-api/internal/models"

// MemberRef identifies a proposed group member. Clients send either _id or id.
type MemberRef struct {
	ID    string `json:"_id"`
	AltID string `json:"id"`
	Name  string `json:"name"`
}

// Key returns whichever identifier the client provided.
func (m MemberRef) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return m.AltID
}

// CreateGroupRequest is the payload for forming a project group.
type CreateGroupRequest struct {
	GroupName       string      `json:"groupName"`
	TopicName       string      `json:"topicName"`
	SelectedMembers []MemberRef `json:"selectedMembers"`
	Members         []MemberRef `json:"members"`
}

// IncomingMembers returns selectedMembers, falling back to members.
func (r CreateGroupRequest) IncomingMembers() []MemberRef {
	if len(r.SelectedMembers) > 0 {
		return r.SelectedMembers
	}
	return r.Members
}

// EditGroupRequest carries a partial group update. Name is accepted as an alias of groupName.
type EditGroupRequest struct {
	GroupName *string `json:"groupName"`
	Name      *string `json:"name"`
	TopicName *string `json:"topicName"`
}

// NewName returns the requested group name, if any.
func (r EditGroupRequest) NewName() *string {
	if r.GroupName != nil {
		return r.GroupName
	}
	return r.Name
}

// AssignGroupRequest assigns a guide to a group. notificationId is the legacy name of groupId.
type AssignGroupRequest struct {
	GroupID        string `json:"groupId"`
	NotificationID string `json:"notificationId"`
	GuideID        string `json:"guideId"`
}

// TargetGroupID returns groupId, falling back to notificationId.
func (r AssignGroupRequest) TargetGroupID() string {
	if r.GroupID != "" {
		return r.GroupID
	}
	return r.NotificationID
}

// GroupView is a group as returned to clients.
type GroupView struct {
	models.GroupDetail
	AssignedToViewer bool `json:"assignedToViewer"`
}
