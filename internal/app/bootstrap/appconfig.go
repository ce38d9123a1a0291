// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging
// level, request limits). AppConfig is everything specific to this
// application: database connection, session and CSRF keys, mail, uploads,
// and the initial admin account.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions
	SessionDomain string // Cookie domain (blank means current host)

	// CSRF protection
	CSRFKey string // 32-byte secret for gorilla/csrf (must be strong in production)

	// Referral cookie signing
	ReferralKey string // Secret for signing the referral attribution cookie

	// File uploads (profile pictures)
	UploadDir       string // Local directory uploads are written to
	UploadURLPrefix string // URL prefix the upload directory is served under

	// Static assets
	StaticDir string // Directory served under /static

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty disables outbound mail)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., contato@mobiliza.example)
	MailUseTLS   bool   // Use STARTTLS when connecting

	// Base URL for links in outbound email (password reset) and for the
	// referral links shown on the leader panel.
	BaseURL string // e.g., "https://mobiliza.example" or "http://localhost:3000"

	// Initial admin account, created on startup when no admin exists.
	AdminName     string
	AdminEmail    string
	AdminPassword string
}
