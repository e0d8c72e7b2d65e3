package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

const defaultFromName = "Healthcare"

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (SendGrid, SES, stub) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (Receipt, error)
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // Plain text body
	HTML    string // Optional HTML body
}

// Receipt is what the delivery provider reported for an accepted message.
type Receipt struct {
	ID         string `json:"id"`
	Provider   string `json:"provider"`
	StatusCode int    `json:"status_code,omitempty"`
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender creates a new SendGrid email sender.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Send sends an email via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) (Receipt, error) {
	if s == nil || s.client == nil {
		return Receipt{}, fmt.Errorf("notify: sendgrid client not configured")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	message := buildSendGridMessage(from, to, msg)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return Receipt{}, fmt.Errorf("notify: sendgrid send failed: %w", err)
	}

	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return Receipt{}, fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	receipt := Receipt{Provider: "sendgrid", StatusCode: response.StatusCode}
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		receipt.ID = ids[0]
	}
	s.logger.Info("email sent via sendgrid", "to", msg.To, "subject", msg.Subject, "status", response.StatusCode, "message_id", receipt.ID)
	return receipt, nil
}

// buildSendGridMessage adds a text/plain part only when msg carries a plain
// body. Without either body the subject is sent as plain text.
func buildSendGridMessage(from, to *mail.Email, msg EmailMessage) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(from)
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(to)
	m.AddPersonalizations(p)

	plain := msg.Body
	if plain == "" && msg.HTML == "" {
		plain = msg.Subject
	}
	if plain != "" {
		m.AddContent(mail.NewContent("text/plain", plain))
	}
	if msg.HTML != "" {
		m.AddContent(mail.NewContent("text/html", msg.HTML))
	}
	return m
}

// StubEmailSender is a no-op sender for local runs or when email is disabled.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender creates a stub email sender that logs but doesn't send.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send logs the email but doesn't actually send it.
func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) (Receipt, error) {
	id := "stub-" + uuid.NewString()
	s.logger.Info("stub email sender: would send email", "to", msg.To, "subject", msg.Subject, "message_id", id)
	return Receipt{ID: id, Provider: "stub"}, nil
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubEmailSender)(nil)
)
