package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RoleName identifies one of the built-in roles.
type RoleName string

const (
	RoleAdmin  RoleName = "ADMIN"
	RoleMember RoleName = "MEMBER"
)

// Role is a named set of permissions. The built-in roles are seeded at
// startup; accounts reference them through AccountRole assignments.
type Role struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      RoleName      `bson:"name"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// AccountRole assigns a role to an account.
type AccountRole struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	AccountID bson.ObjectID `bson:"account_id"`
	RoleID    bson.ObjectID `bson:"role_id"`
	CreatedAt time.Time     `bson:"created_at"`
}
