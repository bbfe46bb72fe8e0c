package service

import (
	"context"
	"strings"

	"github.com/noah-isme/fyp-manager-api/internal/models"
	"github.com/noah-isme/fyp-manager-api/internal/repository"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
)

type principalRepository interface {
	FindByIDAndRole(ctx context.Context, id string, role models.UserRole) (*models.Principal, error)
	List(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	ExistsByRollNo(ctx context.Context, rollNo, excludeID string) (bool, error)
	Create(ctx context.Context, principal *models.Principal) error
	Update(ctx context.Context, principal *models.Principal) error
	Delete(ctx context.Context, id string, role models.UserRole) error
}

// ensurePrincipalUnique checks email, username and roll number against every
// principal regardless of role.
func ensurePrincipalUnique(ctx context.Context, repo principalRepository, p *models.Principal) error {
	exists, err := repo.ExistsByEmail(ctx, p.Email, p.ID)
	if err != nil {
		return internalError(err, "failed to check email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "Email already exists")
	}
	if p.Username != nil {
		exists, err = repo.ExistsByUsername(ctx, *p.Username, p.ID)
		if err != nil {
			return internalError(err, "failed to check username")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "Username already exists")
		}
	}
	if p.RollNo != nil {
		exists, err = repo.ExistsByRollNo(ctx, *p.RollNo, p.ID)
		if err != nil {
			return internalError(err, "failed to check roll number")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "Roll number already exists")
		}
	}
	return nil
}

// principalWriteError maps unique index violations raised by a concurrent writer.
func principalWriteError(err error, message string) error {
	constraint, ok := repository.UniqueViolation(err)
	if !ok {
		return internalError(err, message)
	}
	switch {
	case strings.Contains(constraint, "username"):
		return appErrors.Clone(appErrors.ErrConflict, "Username already exists")
	case strings.Contains(constraint, "roll_no"):
		return appErrors.Clone(appErrors.ErrConflict, "Roll number already exists")
	default:
		return appErrors.Clone(appErrors.ErrConflict, "Email already exists")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
