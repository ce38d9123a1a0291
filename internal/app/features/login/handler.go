// internal/app/features/login/handler.go
package login

import (
	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/auth"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the login handlers.
type Handler struct {
	DB         *mongo.Database
	Users      *userstore.Store
	Identity   identity.Provider
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
}

// NewHandler constructs a login Handler.
func NewHandler(db *mongo.Database, idp identity.Provider, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Users:      userstore.New(db),
		Identity:   idp,
		SessionMgr: sessionMgr,
		Log:        logger,
		ErrLog:     errLog,
	}
}
