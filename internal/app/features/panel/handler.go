// internal/app/features/panel/handler.go
package panel

import (
	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	announcementstore "github.com/mobilizabr/mobiliza/internal/app/store/announcements"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the leader panel handlers.
type Handler struct {
	DB            *mongo.Database
	Users         *userstore.Store
	Announcements *announcementstore.Store
	BaseURL       string
	Log           *zap.Logger
	ErrLog        *uierrors.ErrorLogger
}

// NewHandler constructs a panel Handler. baseURL is used to build the
// leader's shareable referral link.
func NewHandler(db *mongo.Database, baseURL string, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Users:         userstore.New(db),
		Announcements: announcementstore.New(db),
		BaseURL:       baseURL,
		Log:           logger,
		ErrLog:        errLog,
	}
}
