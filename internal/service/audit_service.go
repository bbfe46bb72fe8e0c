package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/fyp-manager-api/internal/models"
)

type auditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// AuditService writes the audit trail. A nil repository turns it into a no-op.
type AuditService struct {
	repo    auditRepository
	timeout time.Duration
	logger  *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, timeout: 3 * time.Second, logger: logger}
}

// Enabled reports whether entries are persisted.
func (s *AuditService) Enabled() bool {
	return s != nil && s.repo != nil
}

// Record stores entry. Failures are logged and never returned.
func (s *AuditService) Record(ctx context.Context, entry *models.AuditLog) {
	if !s.Enabled() || entry == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err))
	}
}

// List returns recent entries, newest first.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	if !s.Enabled() {
		return []models.AuditLog{}, nil
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list audit logs")
	}
	return items, nil
}
