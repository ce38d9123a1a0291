package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateRegion inserts a region with the given name.
func (f *Fixtures) CreateRegion(ctx context.Context, name string) models.Region {
	f.t.Helper()

	region := models.Region{
		ID:     primitive.NewObjectID(),
		Name:   name,
		NameCI: text.Fold(name),
	}
	if _, err := f.db.Collection("regions").InsertOne(ctx, region); err != nil {
		f.t.Fatalf("failed to create test region: %v", err)
	}
	return region
}

// CreateSupporter inserts a supporter with no login account, optionally
// attributed to a leader.
func (f *Fixtures) CreateSupporter(ctx context.Context, name, email string, leaderID *primitive.ObjectID) models.User {
	f.t.Helper()
	return f.insertUser(ctx, models.User{
		Name:     name,
		Email:    email,
		Role:     models.RoleSupporter,
		LeaderID: leaderID,
	})
}

// CreateLeader inserts a leader with a login account.
func (f *Fixtures) CreateLeader(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	authID := "auth-" + primitive.NewObjectID().Hex()
	return f.insertUser(ctx, models.User{
		AuthID: &authID,
		Name:   name,
		Email:  email,
		Role:   models.RoleLeader,
	})
}

// CreateAdmin inserts an admin with a login account.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	authID := "auth-" + primitive.NewObjectID().Hex()
	return f.insertUser(ctx, models.User{
		AuthID: &authID,
		Name:   name,
		Email:  email,
		Role:   models.RoleAdmin,
	})
}

func (f *Fixtures) insertUser(ctx context.Context, u models.User) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.NameCI = text.Fold(u.Name)
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateEvent inserts an event with a slug derived from the name by the
// caller's expectations; tests pass the slug explicitly to keep assertions
// readable.
func (f *Fixtures) CreateEvent(ctx context.Context, name, slug, eventDate string) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Slug:      slug,
		EventDate: eventDate,
		Location:  "Local de Teste",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, ev); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return ev
}

// CreateRegistration inserts an event registration.
func (f *Fixtures) CreateRegistration(ctx context.Context, eventID, userID primitive.ObjectID, leaderID *primitive.ObjectID) models.EventRegistration {
	f.t.Helper()

	reg := models.EventRegistration{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		UserID:    userID,
		LeaderID:  leaderID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("event_registrations").InsertOne(ctx, reg); err != nil {
		f.t.Fatalf("failed to create test registration: %v", err)
	}
	return reg
}
