package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Account represents a login identity. The password hash is an opaque
// derived value, never the raw secret. An account whose ConfirmedAt is nil
// has not completed email confirmation and cannot sign in.
type Account struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	Email          string        `bson:"email"`
	PasswordHash   string        `bson:"password_hash"`
	FirstName      string        `bson:"first_name"`
	LastName       string        `bson:"last_name"`
	OrganizationID bson.ObjectID `bson:"organization_id"`
	ConfirmedAt    *time.Time    `bson:"confirmed_at"`
	DeletedAt      *time.Time    `bson:"deleted_at"`
	CreatedAt      time.Time     `bson:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at"`
}

// Confirmed reports whether the account has confirmed its email address.
func (a *Account) Confirmed() bool {
	return a.ConfirmedAt != nil
}
