package regionstore

import (
	"context"

	"github.com/mobilizabr/mobiliza/internal/app/system/normalize"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("regions")}
}

// List returns all regions sorted by folded name, for form dropdowns.
func (s *Store) List(ctx context.Context) ([]models.Region, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Region
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads a region.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Region, error) {
	var r models.Region
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Exists reports whether a region with the given ID exists. Registration
// forms use it to reject forged region IDs.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
	return n > 0, err
}

// Seed upserts the given region names, keyed by folded name so re-running
// startup never duplicates them.
func (s *Store) Seed(ctx context.Context, names []string) error {
	for _, raw := range names {
		name := normalize.Name(raw)
		if name == "" {
			continue
		}
		ci := text.Fold(name)
		_, err := s.c.UpdateOne(ctx,
			bson.M{"name_ci": ci},
			bson.M{
				"$set":         bson.M{"name": name, "name_ci": ci},
				"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
