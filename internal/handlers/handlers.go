// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers implements the JSON API.
package handlers

import (
	"net/http"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/services/account"
	"codeberg.org/oliverandrich/anonbox/internal/services/ratelimit"
	"codeberg.org/oliverandrich/anonbox/internal/services/session"
	"codeberg.org/oliverandrich/anonbox/internal/services/token"
	"codeberg.org/oliverandrich/anonbox/internal/sse"
	"github.com/labstack/echo/v4"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	accounts  *account.Service
	sessions  *session.Manager
	tokens    *token.Manager
	limiter   *ratelimit.Limiter
	hub       *sse.Hub
	heartbeat time.Duration
}

// New creates a new Handlers instance. limiter may be nil.
func New(accounts *account.Service, sessions *session.Manager, tokens *token.Manager, limiter *ratelimit.Limiter, hub *sse.Hub) *Handlers {
	return &Handlers{
		accounts:  accounts,
		sessions:  sessions,
		tokens:    tokens,
		limiter:   limiter,
		hub:       hub,
		heartbeat: 30 * time.Second,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
