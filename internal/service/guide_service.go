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

// GuideService manages guide principals.
type GuideService struct {
	repo      principalRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGuideService constructs a GuideService.
func NewGuideService(repo principalRepository, validate *validator.Validate, logger *zap.Logger) *GuideService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuideService{repo: repo, validator: validate, logger: logger}
}

// List returns the guides visible to actor. A guide only sees their own record.
func (s *GuideService) List(ctx context.Context, actor *models.JWTClaims, department string) ([]models.Principal, error) {
	filter := models.PrincipalFilter{Role: models.RoleGuide, Department: strings.TrimSpace(department)}
	if actor != nil && actor.Role == models.RoleGuide {
		filter.IDs = []string{actor.UserID}
	}
	guides, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list guides")
	}
	return guides, nil
}

// Create registers a guide.
func (s *GuideService) Create(ctx context.Context, req dto.GuideRequest) (*models.Principal, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.Department = strings.TrimSpace(req.Department)
	req.Specialization = strings.TrimSpace(req.Specialization)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid guide payload")
	}

	status := req.Status
	if status == "" {
		status = models.StatusActive
	}
	guide := &models.Principal{
		Role:           models.RoleGuide,
		Name:           req.Name,
		Email:          req.Email,
		Username:       &req.Username,
		Department:     req.Department,
		Specialization: &req.Specialization,
		Status:         status,
	}
	if err := ensurePrincipalUnique(ctx, s.repo, guide); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, guide); err != nil {
		return nil, principalWriteError(err, "failed to create guide")
	}
	return guide, nil
}

// Update applies a partial update to a guide.
func (s *GuideService) Update(ctx context.Context, id string, req dto.UpdateGuideRequest) (*models.Principal, error) {
	req.Name = trimmedPtr(req.Name)
	req.Username = trimmedPtr(req.Username)
	req.Department = trimmedPtr(req.Department)
	req.Specialization = trimmedPtr(req.Specialization)
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid guide payload")
	}

	if id = canonicalID(id); id == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Guide not found")
	}
	guide, err := s.repo.FindByIDAndRole(ctx, id, models.RoleGuide)
	if err != nil {
		return nil, lookupError(err, "Guide not found")
	}
	if req.Name != nil {
		guide.Name = *req.Name
	}
	if req.Email != nil {
		guide.Email = *req.Email
	}
	if req.Username != nil {
		guide.Username = req.Username
	}
	if req.Department != nil {
		guide.Department = *req.Department
	}
	if req.Specialization != nil {
		guide.Specialization = req.Specialization
	}
	if req.Status != nil {
		guide.Status = *req.Status
	}

	if err := ensurePrincipalUnique(ctx, s.repo, guide); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, guide); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Guide not found")
		}
		return nil, principalWriteError(err, "failed to update guide")
	}
	return guide, nil
}

// Delete removes a guide. Groups they accepted go back to pending acceptance.
func (s *GuideService) Delete(ctx context.Context, id string) error {
	if id = canonicalID(id); id == "" {
		return appErrors.Clone(appErrors.ErrNotFound, "Guide not found")
	}
	if err := s.repo.Delete(ctx, id, models.RoleGuide); err != nil {
		return lookupError(err, "Guide not found")
	}
	return nil
}
