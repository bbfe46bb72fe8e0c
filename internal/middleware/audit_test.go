package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fyp-manager-api/internal/models"
)

type recordedAudit struct {
	entries []*models.AuditLog
}

func (r *recordedAudit) Record(ctx context.Context, entry *models.AuditLog) {
	r.entries = append(r.entries, entry)
}

func TestAuditRecordsSuccessfulMutations(t *testing.T) {
	recorder := &recordedAudit{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "guide-1", Role: models.RoleGuide})
	})
	r.PUT("/rejectGroup/:id", Audit(recorder, models.AuditActionGroupReject, "group"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.POST("/createGroup", Audit(recorder, models.AuditActionGroupCreate, "group"), func(c *gin.Context) {
		SetAuditResource(c, "new-group")
		c.Status(http.StatusCreated)
	})
	r.POST("/fails", Audit(recorder, models.AuditActionGroupCreate, "group"), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPut, "/rejectGroup/g-1", nil),
		httptest.NewRequest(http.MethodPost, "/createGroup", nil),
		httptest.NewRequest(http.MethodPost, "/fails", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, recorder.entries, 2)
	reject := recorder.entries[0]
	assert.Equal(t, models.AuditActionGroupReject, reject.Action)
	assert.Equal(t, "g-1", models.StringValue(reject.ResourceID))
	assert.Equal(t, "guide-1", models.StringValue(reject.ActorID))
	assert.Equal(t, models.RoleGuide, reject.ActorRole)
	assert.Equal(t, "/rejectGroup/:id", reject.Path)

	created := recorder.entries[1]
	assert.Equal(t, "new-group", models.StringValue(created.ResourceID))
	assert.Equal(t, http.StatusCreated, created.Status)
}
