package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tenantly/tenantly-api/internal/model"
)

// AuditLogRepository defines the interface for audit log persistence.
type AuditLogRepository interface {
	SaveAuditLog(ctx context.Context, entry *model.AuditLog) error
	ListAuditLogs(ctx context.Context) ([]*model.AuditLog, error)
}

const auditLogCollection = "audit_logs"

type auditLogMongoRepository struct {
	db *mongo.Database
}

// NewAuditLogMongoRepository creates a new MongoDB repository for audit logs.
func NewAuditLogMongoRepository(db *mongo.Database) AuditLogRepository {
	return &auditLogMongoRepository{db: db}
}

func (r *auditLogMongoRepository) SaveAuditLog(ctx context.Context, entry *model.AuditLog) error {
	entry.CreatedAt = time.Now()

	_, err := r.db.Collection(auditLogCollection).InsertOne(ctx, entry)
	return err
}

func (r *auditLogMongoRepository) ListAuditLogs(ctx context.Context) ([]*model.AuditLog, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.db.Collection(auditLogCollection).Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*model.AuditLog
	for cursor.Next(ctx) {
		var entry model.AuditLog
		if err := cursor.Decode(&entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
