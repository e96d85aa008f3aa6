package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DefaultProjectName is the name of the project created for every new account.
const DefaultProjectName = "Default Project"

// Project is a workspace owned by a single account.
type Project struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	AccountID   bson.ObjectID `bson:"account_id"`
	Name        string        `bson:"name"`
	Description string        `bson:"description"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}
