package mailer

import (
	"context"

	"go.uber.org/zap"

	"user-auth-service/internal/logger"
)

// LogMailer writes messages to the debug log instead of sending them.
// Intended for local development only.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	logger.Debug("Email not sent, log mail provider in use",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
		zap.String("event", "email_logged"),
	)
	return nil
}
