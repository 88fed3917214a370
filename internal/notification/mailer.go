// Package notification turns lifecycle events into email. Delivery is best
// effort: a failed send is logged and dropped, never retried and never
// surfaced to the request that triggered it.
package notification

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/frahmantamala/permission-management/internal"
)

// Mailer delivers a single HTML message.
type Mailer interface {
	Send(toAddress, subject, htmlBody string) error
}

type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewMailer returns an SMTP mailer, or a no-op one when mail is disabled so
// the rest of the system never has to check.
func NewMailer(cfg internal.MailConfig) Mailer {
	if !cfg.Enabled || cfg.Host == "" {
		return NoopMailer{}
	}
	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (m *SMTPMailer) Send(toAddress, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", toAddress)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", toAddress, err)
	}
	return nil
}

// NoopMailer swallows messages; used when SMTP is not configured.
type NoopMailer struct{}

func (NoopMailer) Send(string, string, string) error {
	return nil
}
