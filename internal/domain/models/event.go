// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is an admin-created campaign event that supporters register for.
// Slug is derived from Name and unique across events.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	EventDate   string             `bson:"event_date" json:"event_date"` // 2006-01-02T15:04:05-03:00
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// EventRegistration links a user to an event. LeaderID is the referral
// attribution carried by the registration itself; it may differ from the
// user's own leader_id.
type EventRegistration struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID  primitive.ObjectID  `bson:"event_id" json:"event_id"`
	UserID   primitive.ObjectID  `bson:"user_id" json:"user_id"`
	LeaderID *primitive.ObjectID `bson:"leader_id,omitempty" json:"leader_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
