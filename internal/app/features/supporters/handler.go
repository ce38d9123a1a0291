// internal/app/features/supporters/handler.go
package supporters

import (
	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	regionstore "github.com/mobilizabr/mobiliza/internal/app/store/regions"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/referral"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the public supporter registration handlers.
type Handler struct {
	DB       *mongo.Database
	Users    *userstore.Store
	Regions  *regionstore.Store
	Referral *referral.Codec
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs a supporters Handler.
func NewHandler(db *mongo.Database, ref *referral.Codec, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Users:    userstore.New(db),
		Regions:  regionstore.New(db),
		Referral: ref,
		Log:      logger,
		ErrLog:   errLog,
	}
}
