// internal/domain/models/authaccount.go
package models

import "time"

// AuthAccount is the identity provider's record for a login-capable user.
// Its ID (an opaque string) is what User.AuthID points at.
type AuthAccount struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash []byte    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// ResetToken is a single-use password reset token.
type ResetToken struct {
	Token     string    `bson:"_id" json:"token"`
	AccountID string    `bson:"account_id" json:"account_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	Used      bool      `bson:"used" json:"used"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
