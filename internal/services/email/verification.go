// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"io"
	"strings"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/i18n"
	"github.com/a-h/templ"
)

// VerificationContent is the localized text of a verification email.
type VerificationContent struct {
	Subject  string
	Greeting string
	Intro    string
	Code     string
	Expiry   string
	Ignore   string
}

func newVerificationContent(ctx context.Context, appName, handle, code string, ttl time.Duration) VerificationContent {
	return VerificationContent{
		Subject:  i18n.TData(ctx, "email_verification_subject", map[string]any{"AppName": appName}),
		Greeting: i18n.TData(ctx, "email_verification_greeting", map[string]any{"Handle": handle}),
		Intro:    i18n.T(ctx, "email_verification_intro"),
		Code:     code,
		Expiry:   i18n.TPlural(ctx, "email_verification_expiry", ttlMinutes(ttl)),
		Ignore:   i18n.T(ctx, "email_verification_ignore"),
	}
}

// Text renders the plain text body.
func (c VerificationContent) Text() string {
	var b strings.Builder
	b.WriteString(c.Greeting + "\n\n")
	b.WriteString(c.Intro + "\n\n")
	b.WriteString("    " + c.Code + "\n\n")
	b.WriteString(c.Expiry + "\n\n")
	b.WriteString(c.Ignore + "\n")
	return b.String()
}

// VerificationEmail renders the HTML body.
func VerificationEmail(c VerificationContent) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		parts := []string{
			`<!doctype html><html lang="`, templ.EscapeString(i18n.GetLocale(ctx)), `"><head><meta charset="utf-8"><title>`,
			templ.EscapeString(c.Subject),
			`</title></head><body style="font-family:sans-serif;color:#222"><h2>`,
			templ.EscapeString(c.Greeting),
			`</h2><p>`,
			templ.EscapeString(c.Intro),
			`</p><p style="font-size:24px;font-weight:bold;letter-spacing:4px">`,
			templ.EscapeString(c.Code),
			`</p><p>`,
			templ.EscapeString(c.Expiry),
			`</p><p style="color:#666">`,
			templ.EscapeString(c.Ignore),
			`</p></body></html>`,
		}
		for _, p := range parts {
			if _, err := io.WriteString(w, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// ttlMinutes rounds the code lifetime to whole minutes, at least one.
func ttlMinutes(ttl time.Duration) int {
	m := int(ttl.Round(time.Minute) / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}
