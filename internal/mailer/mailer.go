package mailer

import "context"

// Mailer defines the interface for delivering account emails.
// This abstraction allows swapping the log-only mailer with a real
// provider without refactoring the handlers.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}
