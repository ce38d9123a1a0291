// internal/domain/models/announcement.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Announcement audiences.
const (
	AudienceAllLeaders = "ALL_LEADERS"
)

// Announcement is an admin-authored notice shown on the leader panel.
type Announcement struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content        string             `bson:"content" json:"content"` // sanitized HTML
	AuthorID       primitive.ObjectID `bson:"author_id" json:"author_id"`
	TargetAudience string             `bson:"target_audience" json:"target_audience"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
