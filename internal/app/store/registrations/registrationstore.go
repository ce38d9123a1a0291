package registrationstore

import (
	"context"
	"errors"
	"time"

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
	return &Store{c: db.Collection("event_registrations")}
}

// ErrAlreadyRegistered means the (event, user) pair already exists. The
// unique index on event_id+user_id makes re-registration detectable without
// a read-before-write race.
var ErrAlreadyRegistered = errors.New("user is already registered for this event")

// Create inserts a registration. Returns ErrAlreadyRegistered for a repeat
// (event, user) pair.
func (s *Store) Create(ctx context.Context, reg models.EventRegistration) (models.EventRegistration, error) {
	reg.ID = primitive.NewObjectID()
	reg.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, reg); err != nil {
		if wafflemongo.IsDup(err) {
			return models.EventRegistration{}, ErrAlreadyRegistered
		}
		return models.EventRegistration{}, err
	}
	return reg, nil
}

// ListByEvent returns the registrations for an event, oldest first.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventRegistration, error) {
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.EventRegistration
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByEvent returns how many users are registered for an event.
func (s *Store) CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_id": eventID})
}

// Count returns the total number of registrations across all events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// OrphanLeader clears leader_id on every registration attributed to the
// given leader. Run before deleting a leader.
func (s *Store) OrphanLeader(ctx context.Context, leaderID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"leader_id": leaderID},
		bson.M{"$unset": bson.M{"leader_id": ""}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteByUser removes a user's registrations. Run when an admin deletes the
// user row itself.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AttendeeRow is a registration joined with the registrant's user row, for
// the admin attendee list.
type AttendeeRow struct {
	UserID       primitive.ObjectID `bson:"user_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PhoneNumber  string             `bson:"phone_number"`
	RegisteredAt time.Time          `bson:"registered_at"`
}

// Attendees returns the joined attendee list for an event, oldest first.
func (s *Store) Attendees(ctx context.Context, eventID primitive.ObjectID) ([]AttendeeRow, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eventID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.M{
			"user_id":       1,
			"name":          "$user.name",
			"email":         "$user.email",
			"phone_number":  "$user.phone_number",
			"registered_at": "$created_at",
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "registered_at", Value: 1}}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var out []AttendeeRow
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
