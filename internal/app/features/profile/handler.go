// internal/app/features/profile/handler.go
package profile

import (
	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	regionstore "github.com/mobilizabr/mobiliza/internal/app/store/regions"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"github.com/mobilizabr/mobiliza/internal/app/system/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the signed-in user's profile pages.
type Handler struct {
	DB       *mongo.Database
	Users    *userstore.Store
	Regions  *regionstore.Store
	Identity identity.Provider
	Avatars  *uploads.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs a profile Handler.
func NewHandler(db *mongo.Database, idp identity.Provider, avatars *uploads.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Users:    userstore.New(db),
		Regions:  regionstore.New(db),
		Identity: idp,
		Avatars:  avatars,
		Log:      logger,
		ErrLog:   errLog,
	}
}
