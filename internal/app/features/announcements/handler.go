// internal/app/features/announcements/handler.go
package announcements

import (
	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	announcementstore "github.com/mobilizabr/mobiliza/internal/app/store/announcements"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all Announcements handlers.
type Handler struct {
	DB     *mongo.Database
	Store  *announcementstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an Announcements Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Store:  announcementstore.New(db),
		Log:    logger,
		ErrLog: errLog,
	}
}
