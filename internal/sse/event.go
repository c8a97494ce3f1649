// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"strings"
)

// Event names sent to clients.
const (
	EventConnected = "connected"
	EventMessage   = "message"
)

// FormatEvent formats data as an SSE event with an optional event name.
// Every line of multiline data gets its own "data:" prefix.
func FormatEvent(eventName, data string) string {
	var sb strings.Builder

	if eventName != "" {
		sb.WriteString("event: " + eventName + "\n")
	}

	for line := range strings.SplitSeq(data, "\n") {
		sb.WriteString("data: " + line + "\n")
	}

	sb.WriteString("\n")
	return sb.String()
}

// Heartbeat is an SSE comment that keeps the connection alive.
const Heartbeat = ": heartbeat\n\n"
