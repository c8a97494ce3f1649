// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email delivers verification codes by SMTP, or to the log when no
// SMTP server is configured.
package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/config"
	"codeberg.org/oliverandrich/anonbox/internal/i18n"
	"github.com/wneessen/go-mail"
)

// Sender sends verification emails through an SMTP server.
type Sender struct {
	cfg *config.SMTPConfig
}

// NewSender creates a new SMTP sender.
func NewSender(cfg *config.SMTPConfig) (*Sender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &Sender{cfg: cfg}, nil
}

// SendVerification mails the verification code to the account owner.
func (s *Sender) SendVerification(ctx context.Context, to, handle, code string, ttl time.Duration) error {
	msg, err := s.Message(ctx, to, handle, code, ttl)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

// Message builds the verification email in the locale carried by ctx.
func (s *Sender) Message(ctx context.Context, to, handle, code string, ttl time.Duration) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	content := newVerificationContent(ctx, s.appName(ctx), handle, code, ttl)

	var html bytes.Buffer
	if err := VerificationEmail(content).Render(ctx, &html); err != nil {
		return nil, fmt.Errorf("rendering email: %w", err)
	}

	msg.Subject(content.Subject)
	msg.SetBodyString(mail.TypeTextPlain, content.Text())
	msg.AddAlternativeString(mail.TypeTextHTML, html.String())

	return msg, nil
}

func (s *Sender) appName(ctx context.Context) string {
	if s.cfg.FromName != "" {
		return s.cfg.FromName
	}
	return i18n.T(ctx, "app_name")
}

// send delivers a message via SMTP using go-mail.
func (s *Sender) send(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Configure TLS based on config and port
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

// LogSender writes verification codes to the log instead of sending them.
// Used in development when no SMTP host is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (l *LogSender) SendVerification(ctx context.Context, to, handle, code string, ttl time.Duration) error {
	l.logger.InfoContext(ctx, "verification_code",
		"to", to,
		"handle", handle,
		"code", code,
		"expires_in", ttl.String(),
	)
	return nil
}
