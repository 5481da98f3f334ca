package accounts

import (
	"context"
	"fmt"
	"time"
)

// Mailer delivers a rendered message to a recipient. Implementations send
// asynchronously downstream; the core treats every send as fire-and-forget
// and never blocks an operation on delivery.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, to, subject, body string) error

// Send implements Mailer.
func (f MailerFunc) Send(ctx context.Context, to, subject, body string) error {
	if f == nil {
		return nil
	}
	return f(ctx, to, subject, body)
}

type noopMailer struct{}

func (noopMailer) Send(context.Context, string, string, string) error { return nil }

func normalizeMailer(m Mailer) Mailer {
	if m == nil {
		return noopMailer{}
	}
	return m
}

// dispatchEmail sends in the background. Failures are logged and swallowed:
// the security-relevant state (challenge issued, password changed) has
// already been committed by the time we get here.
func dispatchEmail(mailer Mailer, logger Logger, to, subject, body string) {
	go func() {
		if err := mailer.Send(context.Background(), to, subject, body); err != nil {
			logger.Warn("email dispatch failed", "to", to, "subject", subject, "error", err)
		}
	}()
}

func verificationEmail(name, code string, ttl time.Duration) (subject, body string) {
	subject = "Verify your email address"
	body = fmt.Sprintf(
		"Hi %s,\n\nYour verification code is %s.\n\nEnter it to activate your account. The code expires in %s, after which you will need to request a new one by signing in again.\n",
		name, code, formatWindow(ttl),
	)
	return subject, body
}

func resetEmail(name, token string, ttl time.Duration) (subject, body string) {
	subject = "Reset your password"
	body = fmt.Sprintf(
		"Hi %s,\n\nWe received a request to reset your password. Use the link below within %s:\n\n/password-reset/%s\n\nIf you did not request this you can ignore this message.\n",
		name, formatWindow(ttl), token,
	)
	return subject, body
}

func passwordChangedEmail(name string) (subject, body string) {
	subject = "Your password was changed"
	body = fmt.Sprintf(
		"Hi %s,\n\nThe password for your account was just changed. If this was not you, reset your password immediately.\n",
		name,
	)
	return subject, body
}

func formatWindow(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
