package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AuditLog records one handled request: the action performed, who performed
// it, from where, and how it ended.
type AuditLog struct {
	ID         bson.ObjectID  `bson:"_id,omitempty"`
	Action     string         `bson:"action"`
	StatusCode int            `bson:"status_code"`
	IP         string         `bson:"ip"`
	AccountID  string         `bson:"account_id,omitempty"`
	Parameters map[string]any `bson:"parameters,omitempty"`
	Error      string         `bson:"error,omitempty"`
	CreatedAt  time.Time      `bson:"created_at"`
}
