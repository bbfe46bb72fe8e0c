package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fyp-manager-api/internal/models"
)

type fakeAuditService struct {
	filter models.AuditFilter
}

func (f *fakeAuditService) List(_ context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	f.filter = filter
	return []models.AuditLog{{ID: "a1", Action: models.AuditActionGroupCreate}}, nil
}

func TestAuditListParsesFilter(t *testing.T) {
	svc := &fakeAuditService{}
	h := NewAuditHandler(svc)
	c, rec := newTestContext(http.MethodGet, "/api/auditLogs?actorId=ada&resource=group&limit=25", nil)

	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.AuditFilter{ActorID: "ada", Resource: "group", Limit: 25}, svc.filter)
	assert.Contains(t, rec.Body.String(), models.AuditActionGroupCreate)
}

func TestAuditListRejectsBadLimit(t *testing.T) {
	h := NewAuditHandler(&fakeAuditService{})
	c, rec := newTestContext(http.MethodGet, "/api/auditLogs?limit=many", nil)

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
