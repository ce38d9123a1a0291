// internal/app/features/admindash/handler.go
package admindash

import (
	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	eventstore "github.com/mobilizabr/mobiliza/internal/app/store/events"
	registrationstore "github.com/mobilizabr/mobiliza/internal/app/store/registrations"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the admin dashboard handlers.
type Handler struct {
	DB            *mongo.Database
	Users         *userstore.Store
	Events        *eventstore.Store
	Registrations *registrationstore.Store
	Log           *zap.Logger
	ErrLog        *uierrors.ErrorLogger
}

// NewHandler constructs an admindash Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Users:         userstore.New(db),
		Events:        eventstore.New(db),
		Registrations: registrationstore.New(db),
		Log:           logger,
		ErrLog:        errLog,
	}
}
