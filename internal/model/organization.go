package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Organization is the tenant an account belongs to. One is created for every
// signup, named after the caller or the new user's full name.
type Organization struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
