// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user record can carry. Supporters are registrants with no login;
// leaders and admins are authenticated accounts.
const (
	RoleSupporter = "SUPPORTER"
	RoleLeader    = "LEADER"
	RoleAdmin     = "ADMIN"
)

// User represents supporters, leaders, and admins.
//
// NOTE:
//   - AuthID is nil for supporters who were referred or registered through a
//     public form but never created a login. It is set exactly once, when the
//     record is upgraded to a leader account or created via leader sign-up.
//   - LeaderID records which leader is credited with referring this user. It
//     is a plain reference; the referred user keeps it even if their own role
//     later changes.
type User struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	AuthID            *string             `bson:"auth_id,omitempty" json:"auth_id,omitempty"`
	Name              string              `bson:"name" json:"name"`
	NameCI            string              `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	Email             string              `bson:"email" json:"email"`
	CPF               string              `bson:"cpf,omitempty" json:"cpf,omitempty"` // 11 digits, no punctuation
	PhoneNumber       string              `bson:"phone_number" json:"phone_number"`
	RegionID          *primitive.ObjectID `bson:"region_id,omitempty" json:"region_id,omitempty"`
	Role              string              `bson:"role" json:"role"` // SUPPORTER | LEADER | ADMIN
	LeaderID          *primitive.ObjectID `bson:"leader_id,omitempty" json:"leader_id,omitempty"`
	BirthDate         string              `bson:"birth_date,omitempty" json:"birth_date,omitempty"` // YYYY-MM-DD
	Occupation        string              `bson:"occupation,omitempty" json:"occupation,omitempty"`
	Motivation        string              `bson:"motivation,omitempty" json:"motivation,omitempty"`
	ProfilePictureURL string              `bson:"profile_picture_url,omitempty" json:"profile_picture_url,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasLogin reports whether this record is backed by an identity-provider
// account.
func (u *User) HasLogin() bool {
	return u.AuthID != nil && *u.AuthID != ""
}
