package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/mobilizabr/mobiliza/internal/app/system/normalize"
	"github.com/mobilizabr/mobiliza/internal/app/system/slugify"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

var (
	// ErrDuplicateSlug is returned when another event already owns the slug.
	ErrDuplicateSlug = errors.New("an event with this slug already exists")
	errEmptyName     = errors.New("event name is required")
)

// GetByID loads an event by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetBySlug loads an event by its URL slug. Returns mongo.ErrNoDocuments if
// not found.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event. The slug is derived from the name; a name that
// slugs to an existing event's slug is rejected with ErrDuplicateSlug.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.Name = normalize.Name(e.Name)
	if e.Name == "" {
		return models.Event{}, errEmptyName
	}

	e.ID = primitive.NewObjectID()
	e.Slug = slugify.Make(e.Name)

	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Event{}, ErrDuplicateSlug
		}
		return models.Event{}, err
	}
	return e, nil
}

// Update rewrites an event's editable fields. Renaming re-derives the slug,
// so existing links by the old slug stop working.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, e models.Event) error {
	name := normalize.Name(e.Name)
	if name == "" {
		return errEmptyName
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        name,
		"slug":        slugify.Make(name),
		"event_date":  e.EventDate,
		"description": e.Description,
		"location":    e.Location,
		"updated_at":  time.Now(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes an event.
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

// List returns all events sorted by event date descending (soonest-created
// campaign material first in the admin list).
func (s *Store) List(ctx context.Context) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "event_date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the total number of events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
