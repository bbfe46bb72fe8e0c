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
	"github.com/noah-isme/fyp-manager-api/internal/repository"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
)

const (
	departmentListCacheKey = "departments:list"
	departmentCachePattern = "departments:*"
)

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id string) error
}

// DepartmentService manages departments. Listings are served from cache when enabled.
type DepartmentService struct {
	repo      departmentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService constructs the service. cache may be nil.
func NewDepartmentService(repo departmentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns every department and whether it came from cache.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, bool, error) {
	var cached []models.Department
	if hit, _ := s.cache.Get(ctx, departmentListCacheKey, &cached); hit {
		return cached, true, nil
	}

	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, internalError(err, "failed to list departments")
	}
	_ = s.cache.Set(ctx, departmentListCacheKey, departments, 0)
	return departments, false, nil
}

// Get returns a department by id.
func (s *DepartmentService) Get(ctx context.Context, id string) (*models.Department, error) {
	if id = canonicalID(id); id == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Department not found")
	}
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Department not found")
	}
	return department, nil
}

// Create adds a department. The code is stored upper case.
func (s *DepartmentService) Create(ctx context.Context, req dto.DepartmentRequest) (*models.Department, error) {
	department, err := s.normalize(req)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, department, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, department); err != nil {
		return nil, s.writeError(err, "failed to create department")
	}
	s.invalidate(ctx)
	return department, nil
}

// Update replaces the department's fields.
func (s *DepartmentService) Update(ctx context.Context, id string, req dto.DepartmentRequest) (*models.Department, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	department, err := s.normalize(req)
	if err != nil {
		return nil, err
	}
	department.ID = existing.ID
	department.CreatedAt = existing.CreatedAt
	if err := s.ensureUnique(ctx, department, existing.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, department); err != nil {
		return nil, s.writeError(err, "failed to update department")
	}
	s.invalidate(ctx)
	return department, nil
}

// Delete removes the department. Principals referencing it keep the stale name.
func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	if id = canonicalID(id); id == "" {
		return appErrors.Clone(appErrors.ErrNotFound, "Department not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "Department not found")
	}
	s.invalidate(ctx)
	return nil
}

func (s *DepartmentService) normalize(req dto.DepartmentRequest) (*models.Department, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "Department name and code must be at least 2 characters")
	}
	return &models.Department{Name: req.Name, Code: req.Code, Description: req.Description}, nil
}

func (s *DepartmentService) ensureUnique(ctx context.Context, department *models.Department, excludeID string) error {
	exists, err := s.repo.ExistsByCode(ctx, department.Code, excludeID)
	if err != nil {
		return internalError(err, "failed to check department code")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "Department code already exists")
	}
	exists, err = s.repo.ExistsByName(ctx, department.Name, excludeID)
	if err != nil {
		return internalError(err, "failed to check department name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "Department name already exists")
	}
	return nil
}

func (s *DepartmentService) writeError(err error, message string) error {
	if constraint, ok := repository.UniqueViolation(err); ok {
		if strings.Contains(constraint, "name") {
			return appErrors.Clone(appErrors.ErrConflict, "Department name already exists")
		}
		return appErrors.Clone(appErrors.ErrConflict, "Department code already exists")
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "Department not found")
	}
	return internalError(err, message)
}

func (s *DepartmentService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, departmentCachePattern); err != nil {
		s.logger.Warn("failed to invalidate department cache", zap.Error(err))
	}
}
