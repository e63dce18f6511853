package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/go-mail/mail/v2"

	"projecthub/internal/notification/models"
	"projecthub/internal/platform/config"
)

//go:embed templates
var templateFS embed.FS

const invitationTemplate = "invitation.tmpl"

// Dialer is the part of *mail.Dialer the mailer needs.
type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer renders invitation templates and sends them over SMTP.
type Mailer struct {
	dialer Dialer
	sender string
	tmpl   *template.Template
}

// NewMailer builds a Mailer backed by a go-mail SMTP dialer.
func NewMailer(cfg config.SMTP) (*Mailer, error) {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = 5 * time.Second
	return NewMailerWithDialer(dialer, cfg.Sender)
}

// NewMailerWithDialer is NewMailer with an injected transport.
func NewMailerWithDialer(dialer Dialer, sender string) (*Mailer, error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Mailer{dialer: dialer, sender: sender, tmpl: tmpl}, nil
}

// SendInvitation renders the invitation mail and hands it to the SMTP server.
// The outbox worker owns retries, so a failure is returned as-is.
func (m *Mailer) SendInvitation(ctx context.Context, recipient string, payload models.InvitationPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.render(recipient, payload)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send invitation to %s: %w", recipient, err)
	}
	return nil
}

func (m *Mailer) render(recipient string, payload models.InvitationPayload) (*mail.Message, error) {
	exec := func(name string) (string, error) {
		var buf bytes.Buffer
		if err := m.tmpl.ExecuteTemplate(&buf, name, payload); err != nil {
			return "", fmt.Errorf("render %s/%s: %w", invitationTemplate, name, err)
		}
		return buf.String(), nil
	}

	subject, err := exec("subject")
	if err != nil {
		return nil, err
	}
	plainBody, err := exec("plainBody")
	if err != nil {
		return nil, err
	}
	htmlBody, err := exec("htmlBody")
	if err != nil {
		return nil, err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plainBody)
	msg.AddAlternative("text/html", htmlBody)
	return msg, nil
}

// LogSender stands in for the SMTP mailer when no SMTP host is configured.
// Messages are logged and counted as delivered.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendInvitation(ctx context.Context, recipient string, payload models.InvitationPayload) error {
	s.logger.InfoContext(ctx, "smtp not configured, invitation mail logged",
		"recipient", recipient,
		"project_id", payload.ProjectID,
		"accept_url", payload.AcceptURL,
	)
	return nil
}
