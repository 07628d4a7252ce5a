// Package mailer delivers notification emails for published events. Codes
// and card-block notices go out over SMTP; when no SMTP host is configured
// the mailer logs the message instead, which keeps local development free of
// external dependencies.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/mhasanin/digibank/pkg/config"
	"github.com/mhasanin/digibank/pkg/eventbus"
)

const (
	dialTimeout = 8 * time.Second
	connTimeout = 15 * time.Second
)

// Mailer sends plain-text notification emails.
type Mailer struct {
	cnf    *config.Smtp
	logger *slog.Logger
}

// New creates a mailer from SMTP config.
func New(cnf *config.Smtp, logger *slog.Logger) *Mailer {
	return &Mailer{cnf: cnf, logger: logger.With("component", "mailer")}
}

// SubscribeAll registers the mailer's handlers on the bus.
func (m *Mailer) SubscribeAll(bus eventbus.Bus) {
	bus.Subscribe(eventbus.EventOTPIssued, m.handleOTPIssued)
	bus.Subscribe(eventbus.EventCardBlocked, m.handleCardBlocked)
}

func (m *Mailer) handleOTPIssued(ctx context.Context, event eventbus.Event) {
	e, ok := event.(eventbus.OTPIssued)
	if !ok {
		m.logger.Error("unexpected payload type", "type", event.Type())
		return
	}
	subject := "Your verification code"
	body := fmt.Sprintf(
		"Your one-time code is %s. It expires shortly. If you did not request it, ignore this email.",
		e.Code,
	)
	if err := m.send(e.Email, subject, body); err != nil {
		m.logger.Error("send otp email", "email", e.Email, "purpose", e.Purpose, "error", err)
	}
}

func (m *Mailer) handleCardBlocked(ctx context.Context, event eventbus.Event) {
	e, ok := event.(eventbus.CardBlocked)
	if !ok {
		m.logger.Error("unexpected payload type", "type", event.Type())
		return
	}
	subject := "Your card has been blocked"
	body := fmt.Sprintf(
		"Card %s was blocked after repeated incorrect PIN attempts. Request an unblock from your account page or visit a branch.",
		e.CardNumber,
	)
	if err := m.send(e.Email, subject, body); err != nil {
		m.logger.Error("send card blocked email", "email", e.Email, "error", err)
	}
}

func (m *Mailer) send(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("recipient address is empty")
	}

	if m.cnf.Host == "" {
		m.logger.Info("smtp not configured, logging instead", "to", to, "subject", subject, "body", body)
		return nil
	}

	fromHeader := fmt.Sprintf("%s <%s>", m.cnf.FromName, m.cnf.From)
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	return m.sendWithTimeout(to, []byte(msg))
}

// sendWithTimeout dials with an overall connection deadline so a stalled
// SMTP server cannot hang the handler goroutine.
func (m *Mailer) sendWithTimeout(to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", m.cnf.Host, m.cnf.Port)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(connTimeout))

	c, err := smtp.NewClient(conn, m.cnf.Host)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cnf.Host}); err != nil {
			return err
		}
	}
	if m.cnf.Username != "" {
		auth := smtp.PlainAuth("", m.cnf.Username, m.cnf.Password, m.cnf.Host)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(m.cnf.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
