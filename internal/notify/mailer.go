package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/nhle/booking-agent/internal/model"
)

// Mailer implements Notifier over SMTP with a multipart/alternative
// body: a plain-text fallback part plus the HTML part.
type Mailer struct {
	cfg      model.SMTPConfig
	username string
	password string
}

// NewMailer creates an SMTP mailer. username/password are the mailbox
// credentials used for SMTP AUTH.
func NewMailer(cfg model.SMTPConfig, username, password string) *Mailer {
	return &Mailer{cfg: cfg, username: username, password: password}
}

const mimeBoundary = "booking-agent-alt"

// Send composes and delivers one notification email.
func (m *Mailer) Send(_ context.Context, n Notification) error {
	if n.Recipient == "" {
		return fmt.Errorf("notification has no recipient")
	}

	body := m.composeMessage(n)
	addr := m.cfg.Host + ":" + m.cfg.Port

	if m.cfg.TLS {
		return m.sendWithTLS(addr, n.Recipient, body)
	}
	return m.sendWithStartTLS(addr, n.Recipient, body)
}

// composeMessage renders the RFC 2822 message with headers and the
// multipart/alternative body.
func (m *Mailer) composeMessage(n Notification) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: Hotel Booking System <%s>\r\n", m.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", n.Recipient))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", n.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf(
		"Content-Type: multipart/alternative; boundary=%q\r\n", mimeBoundary))
	msg.WriteString("\r\n")

	msg.WriteString("--" + mimeBoundary + "\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString("Please view this email in an HTML-capable email client.\r\n")

	msg.WriteString("--" + mimeBoundary + "\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(n.HTMLBody)
	msg.WriteString("\r\n--" + mimeBoundary + "--\r\n")

	return msg.String()
}

// sendWithTLS sends over an implicit TLS connection.
func (m *Mailer) sendWithTLS(addr, to, body string) error {
	tlsConfig := &tls.Config{ServerName: m.cfg.Host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.username, m.password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return m.sendViaClient(client, to, body)
}

// sendWithStartTLS sends using STARTTLS.
func (m *Mailer) sendWithStartTLS(addr, to, body string) error {
	conn, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		return fmt.Errorf("dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: m.cfg.Host}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("SMTP STARTTLS: %w", err)
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return m.sendViaClient(client, to, body)
}

// sendViaClient sends a message using an already-authenticated SMTP
// client.
func (m *Mailer) sendViaClient(client *smtp.Client, to, body string) error {
	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT TO: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}

	if _, err := writer.Write([]byte(body)); err != nil {
		return fmt.Errorf("writing email body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}

	return client.Quit()
}
