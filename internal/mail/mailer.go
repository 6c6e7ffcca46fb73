// Package mail sends the transactional emails of the signup and password
// reset flows.
package mail

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/connectify/user-api/internal/config"
)

// Sender delivers transactional email. Implementations must not block the
// caller on transient SMTP failures longer than the dialer timeout.
type Sender interface {
	// SendConfirmationCode emails the six-digit signup confirmation code.
	SendConfirmationCode(to, firstName string, code int) error

	// SendPasswordReset emails a password-reset token.
	SendPasswordReset(to, firstName, token string) error
}

// SMTPSender delivers mail through an SMTP relay using gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a sender from SMTP configuration.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendConfirmationCode emails the six-digit signup confirmation code.
func (s *SMTPSender) SendConfirmationCode(to, firstName string, code int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Confirm your Connectify account")

	body := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Thanks for signing up for Connectify. Enter this code to confirm your account:</p>
		<h1>%06d</h1>
		<p>If you did not request this, you can safely ignore this email.</p>
		<p>Best regards,<br>The Connectify Team</p>
	`, firstName, code)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	return nil
}

// SendPasswordReset emails a password-reset token.
func (s *SMTPSender) SendPasswordReset(to, firstName, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Reset your Connectify password")

	body := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>We received a request to reset your Connectify password.</p>
		<p>Your reset token is:</p>
		<p><code>%s</code></p>
		<p>The token expires shortly. If you did not request a reset, ignore this email.</p>
		<p>Best regards,<br>The Connectify Team</p>
	`, firstName, token)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}

// LogSender logs messages instead of delivering them. Used in development
// when no SMTP relay is configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a sender that only logs.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "mail").Logger()}
}

// SendConfirmationCode logs the confirmation code.
func (s *LogSender) SendConfirmationCode(to, firstName string, code int) error {
	s.logger.Info().
		Str("to", to).
		Int("code", code).
		Msg("confirmation email (smtp disabled)")
	return nil
}

// SendPasswordReset logs the reset token.
func (s *LogSender) SendPasswordReset(to, firstName, token string) error {
	s.logger.Info().
		Str("to", to).
		Str("token", token).
		Msg("password reset email (smtp disabled)")
	return nil
}

// Compile-time interface checks.
var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = (*LogSender)(nil)
)
