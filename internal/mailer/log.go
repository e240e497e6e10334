package mailer

import (
	"context"
	"log"
)

// LogMailer implements the Mailer interface by logging the link to stdout.
// Used in development when no email provider is configured, and in tests.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	log.Printf("📧 [Dev Mode] Password reset link for %s: %s", to, link)
	return nil
}
