// internal/app/features/events/handler.go
package events

import (
	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	eventstore "github.com/mobilizabr/mobiliza/internal/app/store/events"
	regionstore "github.com/mobilizabr/mobiliza/internal/app/store/regions"
	registrationstore "github.com/mobilizabr/mobiliza/internal/app/store/registrations"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/referral"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the public event handlers.
type Handler struct {
	DB            *mongo.Database
	Events        *eventstore.Store
	Registrations *registrationstore.Store
	Users         *userstore.Store
	Regions       *regionstore.Store
	Referral      *referral.Codec
	Log           *zap.Logger
	ErrLog        *uierrors.ErrorLogger
}

// NewHandler constructs the public events Handler.
func NewHandler(db *mongo.Database, ref *referral.Codec, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Events:        eventstore.New(db),
		Registrations: registrationstore.New(db),
		Users:         userstore.New(db),
		Regions:       regionstore.New(db),
		Referral:      ref,
		Log:           logger,
		ErrLog:        errLog,
	}
}

// AdminHandler owns the admin event management handlers.
type AdminHandler struct {
	DB            *mongo.Database
	Events        *eventstore.Store
	Registrations *registrationstore.Store
	Log           *zap.Logger
	ErrLog        *uierrors.ErrorLogger
}

// NewAdminHandler constructs the admin events handler.
func NewAdminHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		DB:            db,
		Events:        eventstore.New(db),
		Registrations: registrationstore.New(db),
		Log:           logger,
		ErrLog:        errLog,
	}
}
