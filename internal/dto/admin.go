package dto

// DepartmentRequest creates or replaces a department.
type DepartmentRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Code        string `json:"code" validate:"required,min=2,max=20"`
	Description string `json:"description" validate:"max=500"`
}

// StudentRequest creates a student. Year and status fall back to First Year and Active.
type StudentRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Username   string `json:"username" validate:"required,max=50"`
	Department string `json:"department" validate:"max=100"`
	RollNo     string `json:"rollNo" validate:"required,max=50"`
	Year       string `json:"year" validate:"omitempty,oneof='First Year' 'Second Year' 'Third Year' 'Final Year'"`
	Status     string `json:"status" validate:"omitempty,oneof=Active Inactive Graduated"`
}

// UpdateStudentRequest is a partial student update.
type UpdateStudentRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Username   *string `json:"username" validate:"omitempty,min=1,max=50"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	RollNo     *string `json:"rollNo" validate:"omitempty,min=1,max=50"`
	Year       *string `json:"year" validate:"omitempty,oneof='First Year' 'Second Year' 'Third Year' 'Final Year'"`
	Status     *string `json:"status" validate:"omitempty,oneof=Active Inactive Graduated"`
}

// GuideRequest creates a guide.
type GuideRequest struct {
	Name           string `json:"name" validate:"required,min=3,max=100"`
	Email          string `json:"email" validate:"required,email"`
	Username       string `json:"username" validate:"required,min=2,max=50"`
	Department     string `json:"department" validate:"required,max=100"`
	Specialization string `json:"specialization" validate:"required,max=200"`
	Status         string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

// UpdateGuideRequest is a partial guide update.
type UpdateGuideRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=3,max=100"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Username       *string `json:"username" validate:"omitempty,min=2,max=50"`
	Department     *string `json:"department" validate:"omitempty,min=1,max=100"`
	Specialization *string `json:"specialization" validate:"omitempty,min=1,max=200"`
	Status         *string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

// MessageResponse is returned by operations that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}
