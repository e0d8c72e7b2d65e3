package notify

import (
	"context"

	"github.com/wolfman30/careflow-portal/internal/apperr"
	"github.com/wolfman30/careflow-portal/internal/config"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

// NewSender picks the delivery provider named by cfg.EmailProvider. ses may be
// nil unless the SES provider is selected. A provider without credentials
// yields a sender that fails every send with a configuration error, so the
// rest of the process keeps serving.
func NewSender(cfg *config.Config, ses sesAPI, logger *logging.Logger) EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "stub":
		return NewStubEmailSender(logger)
	case "ses":
		if ses == nil || cfg.EmailFromAddress == "" {
			logger.Warn("SES email provider selected without client or sender address")
			return unavailableSender{}
		}
		return NewSESSender(ses, SESConfig{FromEmail: cfg.EmailFromAddress, FromName: cfg.EmailFromName}, logger)
	default:
		if cfg.SendGridAPIKey == "" {
			logger.Warn("sendgrid email provider selected without SENDGRID_API_KEY")
			return unavailableSender{}
		}
		return NewSendGridSender(SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
	}
}

type unavailableSender struct{}

func (unavailableSender) Send(context.Context, EmailMessage) (Receipt, error) {
	return Receipt{}, apperr.NewServiceUnavailable("Email service not configured")
}
