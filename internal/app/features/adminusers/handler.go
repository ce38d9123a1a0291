// internal/app/features/adminusers/handler.go
package adminusers

import (
	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	regionstore "github.com/mobilizabr/mobiliza/internal/app/store/regions"
	registrationstore "github.com/mobilizabr/mobiliza/internal/app/store/registrations"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the admin user management handlers.
type Handler struct {
	DB            *mongo.Database
	Users         *userstore.Store
	Regions       *regionstore.Store
	Registrations *registrationstore.Store
	Identity      identity.Provider
	Log           *zap.Logger
	ErrLog        *uierrors.ErrorLogger
}

// NewHandler constructs an adminusers Handler.
func NewHandler(db *mongo.Database, idp identity.Provider, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Users:         userstore.New(db),
		Regions:       regionstore.New(db),
		Registrations: registrationstore.New(db),
		Identity:      idp,
		Log:           logger,
		ErrLog:        errLog,
	}
}
