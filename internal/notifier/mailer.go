// Package notifier delivers the notification mail. Mailing is an
// optional capability: missing configuration or a transport failure is
// logged and absorbed, never surfaced as a run failure.
package notifier

import (
	"fmt"
	"io"
	"os"

	"github.com/wneessen/go-mail"

	"renjiwatch/internal/config"
	"renjiwatch/internal/logger"
)

// Default subjects per outcome; the SUBJECT setting overrides both.
const (
	SubjectUpdate  = "Renji Subscription"
	SubjectFailure = "Renji Subscription Error"
)

// Mailer composes and sends one message per run.
type Mailer struct {
	cfg   config.MailConfig
	debug bool
	out   io.Writer
	log   *logger.Logger
}

// NewMailer creates a mailer. In debug mode the composed message is
// written to stdout instead of being transmitted.
func NewMailer(cfg config.MailConfig, debug bool, log *logger.Logger) *Mailer {
	return NewMailerWithSink(cfg, debug, os.Stdout, log)
}

// NewMailerWithSink creates a mailer with a custom debug sink.
func NewMailerWithSink(cfg config.MailConfig, debug bool, out io.Writer, log *logger.Logger) *Mailer {
	return &Mailer{
		cfg:   cfg,
		debug: debug,
		out:   out,
		log:   log,
	}
}

// Send delivers one message with the given body format and reports
// whether it was delivered (or surfaced through the debug sink). The
// caller uses the report to decide whether to persist the checkpoint.
func (m *Mailer) Send(subject, body string, html bool) bool {
	if !m.cfg.Complete() {
		m.log.Warn("information for mailing not available, disabling mailing")

		return false
	}

	msg, err := m.compose(subject, body, html)
	if err != nil {
		m.log.Warn("failed to compose mail", "error", err)

		return false
	}

	if m.debug {
		return m.dump(msg)
	}

	return m.transmit(msg)
}

func (m *Mailer) compose(subject, body string, html bool) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.FromFormat(m.cfg.SendName, m.cfg.SendAddr); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}

	if err := msg.AddToFormat(m.cfg.RecvName, m.cfg.RecvAddr); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(subject)

	contentType := mail.TypeTextPlain
	if html {
		contentType = mail.TypeTextHTML
	}

	msg.SetBodyString(contentType, body)

	return msg, nil
}

// dump writes the composed message to the debug sink without opening
// any network connection.
func (m *Mailer) dump(msg *mail.Msg) bool {
	fmt.Fprintf(m.out, "FROM: %s\nTO: %s\n", m.cfg.SendAddr, m.cfg.RecvAddr)

	if _, err := msg.WriteTo(m.out); err != nil {
		m.log.Warn("failed to write mail to debug sink", "error", err)

		return false
	}

	return true
}

// transmit opens an SMTP-over-TLS session, authenticates, sends and
// closes. Every failure in the sequence is absorbed.
func (m *Mailer) transmit(msg *mail.Msg) bool {
	client, err := mail.NewClient(
		m.cfg.SMTPHost,
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.SendAddr),
		mail.WithPassword(m.cfg.SendPass),
	)
	if err != nil {
		m.log.Warn("failed to send mail", "error", err)

		return false
	}

	m.log.Info("start sending email", "to", m.cfg.RecvAddr)

	if err := client.DialAndSend(msg); err != nil {
		m.log.Warn("failed to send mail", "error", err)

		return false
	}

	m.log.Info("succeed in sending mail")

	return true
}
