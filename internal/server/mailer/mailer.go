// Package mailer renders and delivers the account emails: address
// verification and password reset. Delivery goes through a Transport
// (structured log, SMTP via gomail, or the SendGrid API).
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/xbackend/internal/logging"
	"github.com/dmitrijs2005/xbackend/internal/server/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Message is one rendered email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers rendered messages.
type Transport interface {
	Deliver(ctx context.Context, m Message) error
}

// Mailer renders account emails and hands them to a Transport.
type Mailer struct {
	transport Transport
	from      string
	baseURL   string
	templates *template.Template
}

func New(transport Transport, from, publicBaseURL string) (*Mailer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Mailer{
		transport: transport,
		from:      from,
		baseURL:   strings.TrimRight(publicBaseURL, "/"),
		templates: t,
	}, nil
}

// NewFromConfig picks the transport named by cfg.MailProvider.
func NewFromConfig(cfg *config.Config, logger logging.Logger) (*Mailer, error) {
	var transport Transport
	switch cfg.MailProvider {
	case "", config.MailProviderLog:
		transport = NewLogTransport(logger)
	case config.MailProviderSMTP:
		transport = NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	case config.MailProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("mail provider %q needs an API key", cfg.MailProvider)
		}
		transport = NewSendGridTransport(cfg.SendGridAPIKey)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
	return New(transport, cfg.MailFrom, cfg.PublicBaseURL)
}

// SendVerification mails the email-verify link carrying token.
func (m *Mailer) SendVerification(ctx context.Context, to, name, token string) error {
	link := m.baseURL + "/verify-email?token=" + url.QueryEscape(token)
	return m.send(ctx, to, "Verify your email address", "verify_email.html", name, link)
}

// SendPasswordReset mails the reset link carrying token.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, token string) error {
	link := m.baseURL + "/reset-password?token=" + url.QueryEscape(token)
	return m.send(ctx, to, "Reset your password", "reset_password.html", name, link)
}

func (m *Mailer) send(ctx context.Context, to, subject, tmpl, name, link string) error {
	var buf bytes.Buffer
	data := struct{ Name, Link string }{Name: name, Link: link}
	if err := m.templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl, err)
	}

	msg := Message{
		From:    m.from,
		To:      to,
		Subject: subject,
		HTML:    buf.String(),
		Text:    subject + ": " + link,
	}
	if err := m.transport.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("deliver %q: %w", subject, err)
	}
	return nil
}
