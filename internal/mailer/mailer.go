package mailer

import (
	"context"
	"fmt"

	"user-auth-service/internal/config"
)

//go:generate mockgen -source=mailer.go -destination=mocks/mailer_mock.go -package=mocks

// Message is a plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single message. Implementations do not retry.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the Mailer selected by cfg.Mail.Provider.
func New(cfg *config.Config) (Mailer, error) {
	switch cfg.Mail.Provider {
	case config.MailProviderSMTP:
		m, err := NewSMTPMailer(&cfg.SMTP)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.MailProviderSendGrid:
		if cfg.Mail.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return NewSendGridMailer(cfg.Mail.SendGridAPIKey, ""), nil
	case config.MailProviderResend:
		if cfg.Mail.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required for the resend provider")
		}
		m, err := NewResendMailer(cfg.Mail.ResendAPIKey, "")
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.MailProviderLog:
		return NewLogMailer(), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.Mail.Provider)
	}
}
