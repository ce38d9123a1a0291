// internal/app/features/joinleader/handler.go
package joinleader

import (
	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	regionstore "github.com/mobilizabr/mobiliza/internal/app/store/regions"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/auth"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"github.com/mobilizabr/mobiliza/internal/app/system/referral"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the leader sign-up handlers.
type Handler struct {
	DB         *mongo.Database
	Users      *userstore.Store
	Regions    *regionstore.Store
	Identity   identity.Provider
	SessionMgr *auth.SessionManager
	Referral   *referral.Codec
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
}

// NewHandler constructs a joinleader Handler.
func NewHandler(db *mongo.Database, idp identity.Provider, sessionMgr *auth.SessionManager, ref *referral.Codec, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Users:      userstore.New(db),
		Regions:    regionstore.New(db),
		Identity:   idp,
		SessionMgr: sessionMgr,
		Referral:   ref,
		Log:        logger,
		ErrLog:     errLog,
	}
}
