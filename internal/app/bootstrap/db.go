// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	regionstore "github.com/mobilizabr/mobiliza/internal/app/store/regions"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection used by the whole app.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// defaultRegions is the administrative regions of the Distrito Federal, used
// to populate the registration dropdowns on first start.
var defaultRegions = []string{
	"Plano Piloto", "Gama", "Taguatinga", "Brazlândia", "Sobradinho",
	"Planaltina", "Paranoá", "Núcleo Bandeirante", "Ceilândia", "Guará",
	"Cruzeiro", "Samambaia", "Santa Maria", "São Sebastião", "Recanto das Emas",
	"Lago Sul", "Riacho Fundo", "Lago Norte", "Candangolândia", "Águas Claras",
	"Riacho Fundo II", "Sudoeste/Octogonal", "Varjão", "Park Way", "SCIA",
	"Sobradinho II", "Jardim Botânico", "Itapoã", "SIA", "Vicente Pires",
	"Fercal", "Sol Nascente/Pôr do Sol", "Arniqueira",
}

// EnsureSchema creates the indexes the stores rely on and seeds reference
// data. It runs on every start and is idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "cpf", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "auth_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "name_ci", Value: 1}}},
			{Keys: bson.D{{Key: "leader_id", Value: 1}}},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		"auth_accounts": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"events": {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "event_date", Value: -1}}},
		},
		"event_registrations": {
			{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "leader_id", Value: 1}}},
		},
		"announcements": {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		"regions": {
			{Keys: bson.D{{Key: "name_ci", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"reset_tokens": {
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	logger.Info("database indexes ensured")

	if err := regionstore.New(db).Seed(ctx, defaultRegions); err != nil {
		return fmt.Errorf("seed regions: %w", err)
	}

	return nil
}
