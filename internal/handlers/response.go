// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/anonbox/internal/models"
	"codeberg.org/oliverandrich/anonbox/internal/services/account"
	"github.com/labstack/echo/v4"
)

// Response is the body of every API answer.
type Response struct {
	Success             bool             `json:"success"`
	Message             string           `json:"message"`
	IsAcceptingMessages *bool            `json:"isAcceptingMessages,omitempty"`
	Messages            []models.Message `json:"messages,omitempty"`
	Data                any              `json:"data,omitempty"`
	Token               string           `json:"token,omitempty"`
}

// User-facing messages.
const (
	MsgRegistered         = "User registered successfully. Please check your email for the verification code."
	MsgVerified           = "User verified successfully"
	MsgHandleAvailable    = "username is available"
	MsgInvalidHandle      = "Invalid Username format"
	MsgSignedIn           = "Signed in successfully"
	MsgSignedOut          = "Signed out successfully"
	MsgAccountFound       = "User found successfully"
	MsgAcceptanceUpdated  = "Message acceptance status updated successfully"
	MsgAcceptanceFetched  = "Message acceptance status fetched successfully"
	MsgMessageSent        = "Message sent successfully"
	MsgMessagesFetched    = "Messages fetched successfully"
	MsgNoMessages         = "No messages found for this user"
	MsgUserNotFound       = "User not found"
	MsgInvalidCode        = "Invalid Verification code"
	MsgCodeExpired        = "Verification code has expired"
	MsgHandleTaken        = "Username is already taken"
	MsgEmailTaken         = "User with this email already exists and is verified. Please log in."
	MsgNotAccepting       = "User is not accepting messages"
	MsgEmailFailed        = "Failed to send verification email"
	MsgInvalidCredentials = "Invalid username/email or password"
	MsgNotVerified        = "Please verify your account before signing in"
	MsgTooManyAttempts    = "Too many sign-in attempts. Please try again later."
	MsgInternal           = "Internal server error"
)

func ok(c echo.Context, status int, resp Response) error {
	resp.Success = true
	return c.JSON(status, resp)
}

func failure(c echo.Context, status int, message string) error {
	return c.JSON(status, Response{Success: false, Message: message})
}

// fail converts a service error into the matching status and message.
func fail(c echo.Context, err error) error {
	var verr *account.ValidationError
	switch {
	case errors.As(err, &verr):
		return failure(c, http.StatusBadRequest, verr.Message)
	case errors.Is(err, account.ErrNotFound):
		return failure(c, http.StatusNotFound, MsgUserNotFound)
	case errors.Is(err, account.ErrInvalidCode):
		return failure(c, http.StatusBadRequest, MsgInvalidCode)
	case errors.Is(err, account.ErrCodeExpired):
		return failure(c, http.StatusBadRequest, MsgCodeExpired)
	case errors.Is(err, account.ErrHandleTaken):
		return failure(c, http.StatusBadRequest, MsgHandleTaken)
	case errors.Is(err, account.ErrEmailTaken):
		return failure(c, http.StatusBadRequest, MsgEmailTaken)
	case errors.Is(err, account.ErrNotAccepting):
		return failure(c, http.StatusForbidden, MsgNotAccepting)
	case errors.Is(err, account.ErrEmailDelivery):
		return failure(c, http.StatusInternalServerError, MsgEmailFailed)
	case errors.Is(err, account.ErrInvalidCredentials):
		return failure(c, http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, account.ErrNotVerified):
		return failure(c, http.StatusForbidden, MsgNotVerified)
	}

	slog.ErrorContext(c.Request().Context(), "request_failed",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	return failure(c, http.StatusInternalServerError, MsgInternal)
}
