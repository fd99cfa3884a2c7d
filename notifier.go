package tutortime

import (
	"context"
	"time"
)

// NotifyTimeout bounds every best-effort mail delivery.
var NotifyTimeout = 15 * time.Second

// notifyAsync fires a mail delivery without blocking the caller's workflow.
// Failures are logged and otherwise swallowed: mail is advisory, the durable
// state change already happened by the time this runs.
func notifyAsync(logger Logger, mailer Mailer, to, subject, body string) {
	if mailer == nil {
		return
	}

	if logger == nil {
		logger = defLogger{}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), NotifyTimeout)
		defer cancel()

		if err := mailer.Send(ctx, to, subject, body); err != nil {
			logger.Warn("mail notification failed", "to", to, "subject", subject, "error", err)
		}
	}()
}
