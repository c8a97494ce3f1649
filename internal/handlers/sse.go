// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/auth"
	"codeberg.org/oliverandrich/anonbox/internal/sse"
	"github.com/labstack/echo/v4"
)

// Events streams new mailbox messages of the caller as server-sent events.
func (h *Handlers) Events(c echo.Context) error {
	caller := auth.GetAccount(c.Request().Context())
	ctx := c.Request().Context()
	w := c.Response()

	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	ch := h.hub.Register(caller.ID)
	defer h.hub.Unregister(caller.ID, ch)

	if _, err := w.Write([]byte(sse.FormatEvent(sse.EventConnected, "ok"))); err != nil {
		return nil
	}
	w.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Write([]byte(sse.Heartbeat)); err != nil {
				return nil // Client disconnected
			}
			w.Flush()
		case msg, open := <-ch:
			if !open {
				return nil
			}
			if _, err := w.Write([]byte(msg)); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
