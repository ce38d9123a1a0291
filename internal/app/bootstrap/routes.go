// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	admindashfeature "github.com/mobilizabr/mobiliza/internal/app/features/admindash"
	adminusersfeature "github.com/mobilizabr/mobiliza/internal/app/features/adminusers"
	announcementsfeature "github.com/mobilizabr/mobiliza/internal/app/features/announcements"
	errorsfeature "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	eventsfeature "github.com/mobilizabr/mobiliza/internal/app/features/events"
	healthfeature "github.com/mobilizabr/mobiliza/internal/app/features/health"
	homefeature "github.com/mobilizabr/mobiliza/internal/app/features/home"
	joinleaderfeature "github.com/mobilizabr/mobiliza/internal/app/features/joinleader"
	loginfeature "github.com/mobilizabr/mobiliza/internal/app/features/login"
	logoutfeature "github.com/mobilizabr/mobiliza/internal/app/features/logout"
	panelfeature "github.com/mobilizabr/mobiliza/internal/app/features/panel"
	passwordresetfeature "github.com/mobilizabr/mobiliza/internal/app/features/passwordreset"
	profilefeature "github.com/mobilizabr/mobiliza/internal/app/features/profile"
	supportersfeature "github.com/mobilizabr/mobiliza/internal/app/features/supporters"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/auth"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"github.com/mobilizabr/mobiliza/internal/app/system/mailer"
	"github.com/mobilizabr/mobiliza/internal/app/system/referral"
	"github.com/mobilizabr/mobiliza/internal/app/system/uploads"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It creates the session manager, boots
// the template engine, wires shared services (identity provider, mailer,
// referral codec, avatar storage), and mounts the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	secure := coreCfg.Env == "prod"

	// Session manager. Secure cookies are enabled in production mode.
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// The UserFetcher re-reads the user row on every request, so role
	// changes and deletions take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	idp := identity.NewMongoProvider(db)

	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		UseTLS:   appCfg.MailUseTLS,
	}, logger)

	refCodec := referral.NewCodec([]byte(appCfg.ReferralKey), secure)

	avatars, err := uploads.New(appCfg.UploadDir, appCfg.UploadURLPrefix)
	if err != nil {
		logger.Error("upload store init failed", zap.Error(err))
		return nil, err
	}

	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
	)

	r := chi.NewRouter()

	// Global middleware: session user into context, referral capture from
	// ?ref=, CSRF protection for unsafe methods.
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(refCodec.Capture)
	r.Use(csrfProtect)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets and uploaded profile pictures
	r.Handle("/static/*", fileserver.Handler("/static", appCfg.StaticDir))
	r.Handle(appCfg.UploadURLPrefix+"/*", fileserver.Handler(appCfg.UploadURLPrefix, appCfg.UploadDir))

	// Public pages
	homeHandler := homefeature.NewHandler(db, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	supportersHandler := supportersfeature.NewHandler(db, refCodec, errLog, logger)
	r.Route("/register", supportersHandler.MountRoutes)

	joinHandler := joinleaderfeature.NewHandler(db, idp, sessionMgr, refCodec, errLog, logger)
	r.Route("/join", joinHandler.MountRoutes)

	eventsHandler := eventsfeature.NewHandler(db, refCodec, errLog, logger)
	r.Route("/events", eventsHandler.MountRoutes)

	// Authentication
	loginHandler := loginfeature.NewHandler(db, idp, sessionMgr, errLog, logger)
	r.Route("/login", loginHandler.MountRoutes)

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Route("/logout", logoutHandler.MountRoutes)

	resetHandler := passwordresetfeature.NewHandler(db, idp, mail, appCfg.BaseURL, errLog, logger)
	r.Route("/password-reset", resetHandler.MountRoutes)

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)

	// Signed-in area
	profileHandler := profilefeature.NewHandler(db, idp, avatars, errLog, logger)
	r.Route("/profile", func(pr chi.Router) {
		pr.Use(sessionMgr.RequireSignedIn)
		profileHandler.MountRoutes(pr)
	})

	// Leader panel (admins can see it too)
	panelHandler := panelfeature.NewHandler(db, appCfg.BaseURL, errLog, logger)
	r.Route("/panel", func(pr chi.Router) {
		pr.Use(sessionMgr.RequireRole(models.RoleLeader, models.RoleAdmin))
		panelHandler.MountRoutes(pr)
	})

	// Admin area
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(sessionMgr.RequireRole(models.RoleAdmin))

		dashHandler := admindashfeature.NewHandler(db, errLog, logger)
		ar.Route("/dashboard", dashHandler.MountRoutes)

		usersHandler := adminusersfeature.NewHandler(db, idp, errLog, logger)
		ar.Route("/users", usersHandler.MountRoutes)

		adminEventsHandler := eventsfeature.NewAdminHandler(db, errLog, logger)
		ar.Route("/events", adminEventsHandler.MountRoutes)

		annHandler := announcementsfeature.NewHandler(db, errLog, logger)
		ar.Route("/announcements", annHandler.MountRoutes)
	})

	return r, nil
}
