package models

import "time"

// UserRole represents the closed set of principal roles. The wire casing is
// inherited from existing clients: "admin" is lower case, the others are capitalised.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleGuide   UserRole = "Guide"
	RoleStudent UserRole = "Student"
)

// Valid reports whether the role belongs to the known set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleGuide, RoleStudent:
		return true
	}
	return false
}

// Principal status values.
const (
	StatusActive    = "Active"
	StatusInactive  = "Inactive"
	StatusGraduated = "Graduated"
)

// Student years.
const (
	YearFirst  = "First Year"
	YearSecond = "Second Year"
	YearThird  = "Third Year"
	YearFinal  = "Final Year"
)

// Principal is any authenticated actor. Admins, guides and students share one
// table so email, username and roll number uniqueness hold across all of them.
type Principal struct {
	ID             string    `db:"id" json:"_id"`
	Role           UserRole  `db:"role" json:"role"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	Username       *string   `db:"username" json:"username,omitempty"`
	Department     string    `db:"department" json:"department"`
	RollNo         *string   `db:"roll_no" json:"rollNo,omitempty"`
	Year           *string   `db:"year" json:"year,omitempty"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// PrincipalFilter narrows principal listings.
type PrincipalFilter struct {
	Role       UserRole
	Department string
	IDs        []string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// StringPtr returns nil for blank strings.
func StringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// StringValue dereferences a possibly nil string.
func StringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
