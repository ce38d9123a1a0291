// internal/app/features/passwordreset/handler.go
package passwordreset

import (
	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	resettokenstore "github.com/mobilizabr/mobiliza/internal/app/store/resettokens"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"github.com/mobilizabr/mobiliza/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the password reset handlers.
type Handler struct {
	DB       *mongo.Database
	Users    *userstore.Store
	Tokens   *resettokenstore.Store
	Identity identity.Provider
	Mailer   *mailer.Mailer
	BaseURL  string
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs a passwordreset Handler. baseURL is the externally
// visible origin used to build reset links.
func NewHandler(db *mongo.Database, idp identity.Provider, m *mailer.Mailer, baseURL string, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Users:    userstore.New(db),
		Tokens:   resettokenstore.New(db),
		Identity: idp,
		Mailer:   m,
		BaseURL:  baseURL,
		Log:      logger,
		ErrLog:   errLog,
	}
}
