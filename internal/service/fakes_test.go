package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/fyp-manager-api/internal/models"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
)

// principalStore is an in-memory principal table shared by the service tests.
type principalStore struct {
	items     map[string]*models.Principal
	order     []string
	createErr error
	updateErr error
	deleteErr error
}

func newPrincipalStore(seed ...models.Principal) *principalStore {
	s := &principalStore{items: make(map[string]*models.Principal)}
	for i := range seed {
		p := seed[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		s.items[p.ID] = &p
		s.order = append(s.order, p.ID)
	}
	return s
}

func (s *principalStore) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleGuide, models.RoleStudent} {
		for _, id := range s.order {
			p := s.items[id]
			if p.Role == role && strings.EqualFold(p.Email, email) {
				cp := *p
				return &cp, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (s *principalStore) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	p, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (s *principalStore) FindByIDAndRole(ctx context.Context, id string, role models.UserRole) (*models.Principal, error) {
	p, ok := s.items[id]
	if !ok || p.Role != role {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (s *principalStore) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	count := 0
	for _, p := range s.items {
		if p.Role == role {
			count++
		}
	}
	return count, nil
}

func (s *principalStore) List(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, error) {
	ids := make(map[string]bool, len(filter.IDs))
	for _, id := range filter.IDs {
		ids[id] = true
	}
	out := []models.Principal{}
	for _, id := range s.order {
		p, ok := s.items[id]
		if !ok {
			continue
		}
		if filter.Role != "" && p.Role != filter.Role {
			continue
		}
		if filter.Department != "" && !strings.EqualFold(p.Department, filter.Department) {
			continue
		}
		if len(ids) > 0 && !ids[p.ID] {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *principalStore) exists(excludeID string, match func(*models.Principal) bool) bool {
	for id, p := range s.items {
		if id != excludeID && match(p) {
			return true
		}
	}
	return false
}

func (s *principalStore) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return s.exists(excludeID, func(p *models.Principal) bool { return strings.EqualFold(p.Email, email) }), nil
}

func (s *principalStore) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	return s.exists(excludeID, func(p *models.Principal) bool {
		return p.Username != nil && strings.EqualFold(*p.Username, username)
	}), nil
}

func (s *principalStore) ExistsByRollNo(ctx context.Context, rollNo, excludeID string) (bool, error) {
	return s.exists(excludeID, func(p *models.Principal) bool { return p.RollNo != nil && *p.RollNo == rollNo }), nil
}

func (s *principalStore) Create(ctx context.Context, principal *models.Principal) error {
	if s.createErr != nil {
		return s.createErr
	}
	principal.ID = uuid.NewString()
	cp := *principal
	s.items[cp.ID] = &cp
	s.order = append(s.order, cp.ID)
	return nil
}

func (s *principalStore) Update(ctx context.Context, principal *models.Principal) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.items[principal.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *principal
	s.items[cp.ID] = &cp
	return nil
}

func (s *principalStore) Delete(ctx context.Context, id string, role models.UserRole) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	p, ok := s.items[id]
	if !ok || p.Role != role {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *principalStore) add(role models.UserRole, name, department string) models.Principal {
	p := models.Principal{
		ID:         uuid.NewString(),
		Role:       role,
		Name:       name,
		Email:      fmt.Sprintf("%s@example.com", strings.ToLower(strings.ReplaceAll(name, " ", "."))),
		Department: department,
		Status:     models.StatusActive,
	}
	cp := p
	s.items[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return p
}

func claimsFor(p models.Principal) *models.JWTClaims {
	return &models.JWTClaims{UserID: p.ID, Role: p.Role, Department: p.Department}
}

func requireAppError(t testingT, err error, status int, message string) {
	t.Helper()
	appErr := appErrors.FromError(err)
	if appErr == nil {
		t.Fatalf("expected error with status %d, got nil", status)
		return
	}
	if appErr.Status != status {
		t.Fatalf("expected status %d, got %d (%s)", status, appErr.Status, appErr.Message)
	}
	if message != "" && appErr.Message != message {
		t.Fatalf("expected message %q, got %q", message, appErr.Message)
	}
}

type testingT interface {
	Helper()
	Fatalf(format string, args ...interface{})
}
