// Package mailer sends transactional email over SMTP. In development,
// when no SMTP host is configured, messages are logged instead of sent so
// the confirmation flow stays usable without a mail relay.
package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/rcmalta/laytrack/internal/config"
)

// Sender handles sending emails via SMTP.
type Sender struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewSender creates an email sender.
func NewSender(cfg *config.Config, logger *slog.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// SendConfirmation mails the account-confirmation link to a freshly
// registered address. The link targets GET /api/auth/confirm on the
// configured public base URL.
func (s *Sender) SendConfirmation(to, displayName, token string) error {
	link := fmt.Sprintf("%s/api/auth/confirm?token=%s", s.cfg.SMTP.BaseURL, token)

	if s.cfg.SMTP.Host == "" {
		// Dev mode without a relay: surface the link in the log.
		s.logger.Info("smtp not configured, confirmation link logged", "to", to, "link", link)
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.SMTP.From
	e.To = []string{to}
	e.Subject = "Confirm your laytrack account"

	name := displayName
	if name == "" {
		name = to
	}
	e.Text = []byte(fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your laytrack account was created. Confirm your email address to sign in:\n\n"+
			"%s\n\n"+
			"If you did not create this account you can ignore this message.\n",
		name, link,
	))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTP.Host, s.cfg.SMTP.Port)
	auth := smtp.PlainAuth("", s.cfg.SMTP.Username, s.cfg.SMTP.Password, s.cfg.SMTP.Host)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Error("confirmation email send failed", "to", to, "err", err)
		return fmt.Errorf("mailer.SendConfirmation: %w", err)
	}

	s.logger.Info("confirmation email sent", "to", to)
	return nil
}
