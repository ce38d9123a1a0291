package eventstore_test

import (
	"errors"
	"testing"

	eventstore "github.com/mobilizabr/mobiliza/internal/app/store/events"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/mobilizabr/mobiliza/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ensureEventIndexes(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("events").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("failed to create event index: %v", err)
	}
}

func TestCreateDerivesSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := eventstore.New(db)
	ev, err := store.Create(ctx, models.Event{
		Name:      "Encontro de Líderes em Taguatinga",
		EventDate: "2026-10-01T19:00:00-03:00",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ev.Slug != "encontro-de-lideres-em-taguatinga" {
		t.Errorf("slug = %q", ev.Slug)
	}

	got, err := store.GetBySlug(ctx, ev.Slug)
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ID != ev.ID {
		t.Error("GetBySlug returned wrong event")
	}
}

func TestCreateDuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ensureEventIndexes(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := eventstore.New(db)
	if _, err := store.Create(ctx, models.Event{Name: "Caminhada no Gama", EventDate: "2026-10-01T09:00:00-03:00"}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := store.Create(ctx, models.Event{Name: "Caminhada no Gama", EventDate: "2026-11-01T09:00:00-03:00"})
	if !errors.Is(err, eventstore.ErrDuplicateSlug) {
		t.Fatalf("err = %v, want ErrDuplicateSlug", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateEvent(ctx, "Antigo", "antigo", "2026-01-10T19:00:00-03:00")
	fx.CreateEvent(ctx, "Recente", "recente", "2026-12-10T19:00:00-03:00")
	fx.CreateEvent(ctx, "Meio", "meio", "2026-06-10T19:00:00-03:00")

	events, err := eventstore.New(db).List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}
	want := []string{"recente", "meio", "antigo"}
	for i, slug := range want {
		if events[i].Slug != slug {
			t.Errorf("events[%d].Slug = %q, want %q", i, events[i].Slug, slug)
		}
	}
}

func TestUpdateReslugsAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := eventstore.New(db)
	ev, err := store.Create(ctx, models.Event{Name: "Nome Antigo", EventDate: "2026-10-01T19:00:00-03:00"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = store.Update(ctx, ev.ID, models.Event{Name: "Nome Novo", EventDate: ev.EventDate})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Slug != "nome-novo" {
		t.Errorf("slug after update = %q, want nome-novo", got.Slug)
	}

	if err := store.Delete(ctx, ev.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(ctx, ev.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("err after delete = %v, want ErrNoDocuments", err)
	}
}
