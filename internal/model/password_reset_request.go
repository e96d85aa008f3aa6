package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PasswordResetWindow is how long a password reset request stays usable
// after it was created.
const PasswordResetWindow = 30 * time.Minute

// PasswordResetRequest is a one-time-use artifact authorizing exactly one
// password change. IsValid only ever transitions from true to false; whether
// a request is usable also depends on its age, checked lazily against
// PasswordResetWindow.
type PasswordResetRequest struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	AccountID bson.ObjectID `bson:"account_id"`
	Hash      string        `bson:"hash"`
	IsValid   bool          `bson:"is_valid"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// Usable reports whether the request can still authorize a password change
// at the given instant.
func (r *PasswordResetRequest) Usable(now time.Time) bool {
	return r.IsValid && now.Sub(r.CreatedAt) < PasswordResetWindow
}
