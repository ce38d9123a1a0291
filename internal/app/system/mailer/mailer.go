// Package mailer sends transactional email over SMTP. The only message the
// application sends today is the password reset link.
package mailer

import (
	"fmt"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"
	"go.uber.org/zap"
)

// Email is a fully built message ready to send.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // e.g. "Mobiliza <no-reply@mobiliza.example>"
	UseTLS   bool
}

// Mailer sends email through an SMTP server. A zero-Host config produces a
// disabled mailer that logs instead of sending, which keeps local development
// working without an SMTP server.
type Mailer struct {
	cfg Config
	log *zap.Logger
}

// New creates a Mailer. It does not dial; connections are made per send.
func New(cfg Config, log *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// Enabled reports whether the mailer has an SMTP host configured.
func (m *Mailer) Enabled() bool { return m.cfg.Host != "" }

// Send delivers the email. When the mailer is disabled it logs the message
// subject and recipient and returns nil.
func (m *Mailer) Send(e Email) error {
	if !m.Enabled() {
		m.log.Info("mailer disabled; skipping send",
			zap.String("to", e.To),
			zap.String("subject", e.Subject))
		return nil
	}

	server := mail.NewSMTPClient()
	server.Host = m.cfg.Host
	server.Port = m.cfg.Port
	server.Username = m.cfg.Username
	server.Password = m.cfg.Password
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second
	if m.cfg.UseTLS {
		server.Encryption = mail.EncryptionSTARTTLS
	} else {
		server.Encryption = mail.EncryptionNone
	}

	client, err := server.Connect()
	if err != nil {
		return fmt.Errorf("smtp connect: %w", err)
	}

	msg := mail.NewMSG()
	msg.SetFrom(m.cfg.From).
		AddTo(e.To).
		SetSubject(e.Subject)
	msg.SetBody(mail.TextPlain, e.TextBody)
	if e.HTMLBody != "" {
		msg.AddAlternative(mail.TextHTML, e.HTMLBody)
	}

	if err := msg.Send(client); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
