package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/fyp-manager-api/internal/dto"
	"github.com/noah-isme/fyp-manager-api/internal/models"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
)

// StudentService manages student principals.
type StudentService struct {
	repo      principalRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo principalRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students, optionally restricted to one department.
func (s *StudentService) List(ctx context.Context, department string) ([]models.Principal, error) {
	students, err := s.repo.List(ctx, models.PrincipalFilter{Role: models.RoleStudent, Department: strings.TrimSpace(department)})
	if err != nil {
		return nil, internalError(err, "failed to list students")
	}
	return students, nil
}

// Create registers a student.
func (s *StudentService) Create(ctx context.Context, req dto.StudentRequest) (*models.Principal, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.RollNo = strings.TrimSpace(req.RollNo)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}

	year := req.Year
	if year == "" {
		year = models.YearFirst
	}
	status := req.Status
	if status == "" {
		status = models.StatusActive
	}
	student := &models.Principal{
		Role:       models.RoleStudent,
		Name:       req.Name,
		Email:      req.Email,
		Username:   &req.Username,
		Department: strings.TrimSpace(req.Department),
		RollNo:     &req.RollNo,
		Year:       &year,
		Status:     status,
	}
	if err := ensurePrincipalUnique(ctx, s.repo, student); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, principalWriteError(err, "failed to create student")
	}
	return student, nil
}

// Update applies a partial update to a student.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Principal, error) {
	req.Name = trimmedPtr(req.Name)
	req.Username = trimmedPtr(req.Username)
	req.RollNo = trimmedPtr(req.RollNo)
	req.Department = trimmedPtr(req.Department)
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}

	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Username != nil {
		student.Username = req.Username
	}
	if req.Department != nil {
		student.Department = *req.Department
	}
	if req.RollNo != nil {
		student.RollNo = req.RollNo
	}
	if req.Year != nil {
		student.Year = req.Year
	}
	if req.Status != nil {
		student.Status = *req.Status
	}

	if err := ensurePrincipalUnique(ctx, s.repo, student); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, principalWriteError(err, "failed to update student")
	}
	return student, nil
}

// Delete removes a student. Group memberships go with it.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if id = canonicalID(id); id == "" {
		return appErrors.Clone(appErrors.ErrNotFound, "Student not found")
	}
	if err := s.repo.Delete(ctx, id, models.RoleStudent); err != nil {
		return lookupError(err, "Student not found")
	}
	return nil
}

func (s *StudentService) find(ctx context.Context, id string) (*models.Principal, error) {
	if id = canonicalID(id); id == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
	}
	student, err := s.repo.FindByIDAndRole(ctx, id, models.RoleStudent)
	if err != nil {
		return nil, lookupError(err, "Student not found")
	}
	return student, nil
}
