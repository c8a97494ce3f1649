// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package account

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	HandleMinLength     = 3
	HandleMaxLength     = 20
	PasswordMinLength   = 6
	PasswordMaxLength   = 100
	MessageMaxLength    = 1000
	IdentifierMinLength = 3
	IdentifierMaxLength = 100
)

var (
	handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	validate      = validator.New(validator.WithRequiredStructEnabled())
)

// NormalizeHandle trims the handle and checks its shape. Handles stay case-sensitive.
func NormalizeHandle(handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if !handlePattern.MatchString(handle) {
		return "", invalid("username", "Username must be 3-20 characters of letters, digits or underscores")
	}
	return handle, nil
}

// DecodeHandle URL-decodes a handle taken from a path or query and trims it.
func DecodeHandle(handle string) (string, error) {
	decoded, err := url.PathUnescape(handle)
	if err != nil {
		return "", invalid("username", "Username is not properly encoded")
	}
	decoded = strings.TrimSpace(decoded)
	if decoded == "" {
		return "", invalid("username", "Username is required")
	}
	return decoded, nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return "", invalid("email", "Invalid email address")
	}
	return email, nil
}

// ValidatePassword checks the password length.
func ValidatePassword(password string) error {
	if err := validate.Var(password, "min=6,max=100"); err != nil {
		return invalid("password", "Password must be 6-100 characters long")
	}
	return nil
}

// NormalizeContent trims message content and bounds its length in characters.
func NormalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalid("content", "Message content cannot be empty")
	}
	if err := validate.Var(content, "max=1000"); err != nil {
		return "", invalid("content", "Message content must be at most 1000 characters long")
	}
	return content, nil
}

// NormalizeIdentifier trims a sign-in identifier (email or handle).
func NormalizeIdentifier(identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if err := validate.Var(identifier, "min=3,max=100"); err != nil {
		return "", invalid("identifier", "Identifier must be 3-100 characters long")
	}
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}
	return identifier, nil
}
