package announcementstore

import (
	"context"
	"errors"
	"time"

	"github.com/mobilizabr/mobiliza/internal/app/system/htmlsanitize"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("announcements")}
}

var errEmptyContent = errors.New("announcement content is required")

// Create inserts an announcement. Content is sanitized before storage, so a
// message that is nothing but stripped markup comes back as empty and is
// rejected.
func (s *Store) Create(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	a.Content = htmlsanitize.Sanitize(a.Content)
	if a.Content == "" {
		return models.Announcement{}, errEmptyContent
	}
	if a.TargetAudience == "" {
		a.TargetAudience = models.AudienceAllLeaders
	}

	a.ID = primitive.NewObjectID()
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Announcement{}, err
	}
	return a, nil
}

// GetByID loads an announcement.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Announcement, error) {
	var a models.Announcement
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Update replaces an announcement's content, re-sanitizing it.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, content string) error {
	content = htmlsanitize.Sanitize(content)
	if content == "" {
		return errEmptyContent
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"content":    content,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes an announcement.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListForAudience returns announcements targeted at the audience, newest first.
func (s *Store) ListForAudience(ctx context.Context, audience string) ([]models.Announcement, error) {
	cur, err := s.c.Find(ctx, bson.M{"target_audience": audience},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Announcement
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns all announcements, newest first, for the admin list.
func (s *Store) List(ctx context.Context) ([]models.Announcement, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Announcement
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
