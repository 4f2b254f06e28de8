package smtp

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/rdzcn/weight-tracker/internal/config"
)

// Mailer sends emails. Delivery is best-effort from the caller's point of
// view: a failed send never invalidates the token that was being delivered.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

// NewMailer returns an SMTP-backed mailer, or a local log emitter when no
// SMTP host is configured. In local development the magic link then shows
// up in the process log instead of an inbox.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &logMailer{}
	}
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendEmail(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

type logMailer struct{}

func (l *logMailer) SendEmail(to, subject, body string) error {
	slog.Info("SMTP not configured, emitting email locally", "to", to, "subject", subject, "body", body)
	return nil
}
