// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/anonbox/internal/auth"
	"github.com/labstack/echo/v4"
)

type acceptMessagesRequest struct {
	AcceptMessages *bool `json:"acceptMessages" validate:"required"`
}

// SetAcceptMessages opens or closes the caller's mailbox.
func (h *Handlers) SetAcceptMessages(c echo.Context) error {
	var req acceptMessagesRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	caller := auth.GetAccount(c.Request().Context())

	acc, err := h.accounts.SetAcceptingMessages(c.Request().Context(), caller.ID, *req.AcceptMessages)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, http.StatusOK, Response{
		Message:             MsgAcceptanceUpdated,
		IsAcceptingMessages: &acc.AcceptingMessages,
		Data:                acc,
	})
}

// GetAcceptMessages reports whether the caller's mailbox is open.
func (h *Handlers) GetAcceptMessages(c echo.Context) error {
	caller := auth.GetAccount(c.Request().Context())

	accepting, err := h.accounts.GetAcceptingMessages(c.Request().Context(), caller.ID)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, http.StatusOK, Response{
		Message:             MsgAcceptanceFetched,
		IsAcceptingMessages: &accepting,
		Data:                map[string]bool{"isAcceptingMessages": accepting},
	})
}

type sendMessageRequest struct {
	Username string `json:"username" validate:"required"`
	Content  string `json:"content" validate:"required,max=1000"`
}

// SendMessage delivers an anonymous message. No authentication required.
func (h *Handlers) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	if _, err := h.accounts.SendMessage(c.Request().Context(), req.Username, req.Content); err != nil {
		return fail(c, err)
	}

	return ok(c, http.StatusOK, Response{Message: MsgMessageSent})
}

// GetMessages returns the caller's mailbox, newest first.
func (h *Handlers) GetMessages(c echo.Context) error {
	caller := auth.GetAccount(c.Request().Context())

	messages, err := h.accounts.GetMessages(c.Request().Context(), caller.ID)
	if err != nil {
		return fail(c, err)
	}
	if len(messages) == 0 {
		return failure(c, http.StatusNotFound, MsgNoMessages)
	}

	return ok(c, http.StatusOK, Response{Message: MsgMessagesFetched, Messages: messages})
}
