package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fyp-manager-api/internal/models"
	"github.com/noah-isme/fyp-manager-api/pkg/middleware/requestid"
)

// ContextResourceIDKey lets a handler name the record it created or changed.
const ContextResourceIDKey = "auditResourceID"

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

// SetAuditResource records the id of the affected resource for the audit trail.
func SetAuditResource(c *gin.Context, id string) {
	if id != "" {
		c.Set(ContextResourceIDKey, id)
	}
}

// Audit records an entry after the handler succeeded. Failed requests are not audited.
func Audit(recorder AuditRecorder, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		status := c.Writer.Status()
		if recorder == nil || status >= 400 {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			Method:    c.Request.Method,
			Path:      c.FullPath(),
			Status:    status,
			LatencyMs: time.Since(start).Milliseconds(),
			Details:   requestid.Value(c),
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			CreatedAt: start,
		}
		if claims, ok := CurrentClaims(c); ok {
			entry.ActorID = models.StringPtr(claims.UserID)
			entry.ActorRole = claims.Role
		}
		if id := c.GetString(ContextResourceIDKey); id != "" {
			entry.ResourceID = &id
		} else if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}
		recorder.Record(c.Request.Context(), entry)
	}
}
