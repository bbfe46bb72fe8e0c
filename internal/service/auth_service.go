package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/fyp-manager-api/internal/models"
	"github.com/noah-isme/fyp-manager-api/internal/repository"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
)

type authPrincipalRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Principal, error)
	FindByID(ctx context.Context, id string) (*models.Principal, error)
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, principal *models.Principal) error
}

// AuthConfig defines configuration for session tokens.
type AuthConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// AuthService resolves principals by email and issues session tokens.
type AuthService struct {
	repo      authPrincipalRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authPrincipalRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Expiry <= 0 {
		config.Expiry = 7 * 24 * time.Hour
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config}
}

// TokenTTL returns the session lifetime.
func (s *AuthService) TokenTTL() time.Duration {
	return s.config.Expiry
}

// Login resolves the email to a principal, probing admins first, then guides,
// then students, and issues a session token. No password is checked.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	principal, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUserNotFound, "user not found")
		}
		return nil, internalError(err, "failed to fetch user")
	}

	token, err := s.Issue(principal)
	if err != nil {
		return nil, internalError(err, "failed to create session token")
	}

	s.logger.Info("principal logged in", zap.String("principal_id", principal.ID), zap.String("role", string(principal.Role)))
	return &models.LoginResponse{
		Message:   "Login successful",
		Role:      principal.Role,
		Token:     token,
		ExpiresIn: int64(s.config.Expiry.Seconds()),
		User:      *principal,
	}, nil
}

// Signup creates an administrator. The first administrator may sign up
// anonymously; afterwards only an authenticated administrator can add more.
func (s *AuthService) Signup(ctx context.Context, actor *models.JWTClaims, req models.SignupRequest) (*models.LoginResponse, error) {
	req.UserName = strings.TrimSpace(req.UserName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid signup payload")
	}

	if !actor.IsAdmin() {
		admins, err := s.repo.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return nil, internalError(err, "failed to count administrators")
		}
		if admins > 0 {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only an administrator can create administrators")
		}
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, internalError(err, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Admin already exists with this email")
	}

	admin := &models.Principal{
		Role:   models.RoleAdmin,
		Name:   req.UserName,
		Email:  req.Email,
		Status: models.StatusActive,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if _, ok := repository.UniqueViolation(err); ok {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Admin already exists with this email")
		}
		return nil, internalError(err, "failed to create administrator")
	}

	token, err := s.Issue(admin)
	if err != nil {
		return nil, internalError(err, "failed to create session token")
	}
	return &models.LoginResponse{
		Message:   "Admin created successfully",
		Role:      admin.Role,
		Token:     token,
		ExpiresIn: int64(s.config.Expiry.Seconds()),
		User:      *admin,
	}, nil
}

// Me returns the stored record of the session principal.
func (s *AuthService) Me(ctx context.Context, actor *models.JWTClaims) (*models.Principal, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	principal, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUserNotFound, "user not found")
		}
		return nil, internalError(err, "failed to load user")
	}
	return principal, nil
}

// Issue signs a session token for the principal.
func (s *AuthService) Issue(principal *models.Principal) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID:     principal.ID,
		Role:       principal.Role,
		Department: principal.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   principal.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}
