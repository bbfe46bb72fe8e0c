package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/fyp-manager-api/internal/models"
)

const auditCollection = "audit_logs"

// AuditRepository appends audit entries to MongoDB.
type AuditRepository struct {
	c *mongo.Collection
}

// NewAuditRepository uses the audit_logs collection of db.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return NewAuditRepositoryWithCollection(db.Collection(auditCollection))
}

// NewAuditRepositoryWithCollection wraps an existing collection.
func NewAuditRepositoryWithCollection(c *mongo.Collection) *AuditRepository {
	return &AuditRepository{c: c}
}

// EnsureIndexes creates the lookup indexes used by List.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "resource", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := r.c.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create audit indexes: %w", err)
	}
	return nil
}

// Create inserts one audit entry.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := r.c.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List returns entries matching filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	query := bson.M{}
	if filter.ActorID != "" {
		query["actor_id"] = filter.ActorID
	}
	if filter.Resource != "" {
		query["resource"] = filter.Resource
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := r.c.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit logs: %w", err)
	}
	defer cur.Close(ctx)

	logs := make([]models.AuditLog, 0)
	if err := cur.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("decode audit logs: %w", err)
	}
	return logs, nil
}
