// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package sse fans new mailbox messages out to the owner's open event streams.
package sse

import (
	"encoding/json"
	"log/slog"
	"sync"

	"codeberg.org/oliverandrich/anonbox/internal/models"
	"github.com/samber/lo"
)

// bufferSize is the number of pending events per stream before new ones are dropped.
const bufferSize = 10

// Hub keeps the open streams of every account. An account may have several
// streams open at once (tabs, devices).
type Hub struct {
	streams map[int64][]chan string
	mu      sync.RWMutex
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		streams: make(map[int64][]chan string),
	}
}

// Register opens a stream for the account. Events arrive on the returned channel.
func (h *Hub) Register(accountID int64) chan string {
	ch := make(chan string, bufferSize)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.streams[accountID] = append(h.streams[accountID], ch)
	return ch
}

// Unregister closes a stream previously returned by Register.
func (h *Hub) Unregister(accountID int64, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	remaining := lo.Filter(h.streams[accountID], func(c chan string, _ int) bool {
		return c != ch
	})
	if len(remaining) == 0 {
		delete(h.streams, accountID)
	} else {
		h.streams[accountID] = remaining
	}

	close(ch)
}

// SendToAccount delivers a formatted event to every stream of the account.
// Streams whose buffer is full miss the event.
func (h *Hub) SendToAccount(accountID int64, event string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.streams[accountID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// NotifyMessage publishes a "message" event with the JSON encoded message.
func (h *Hub) NotifyMessage(accountID int64, msg models.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("sse_encode_failed", "account_id", accountID, "error", err)
		return
	}
	h.SendToAccount(accountID, FormatEvent(EventMessage, string(data)))
}

// StreamCount returns the total number of open streams.
func (h *Hub) StreamCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return lo.SumBy(lo.Values(h.streams), func(streams []chan string) int {
		return len(streams)
	})
}

// AccountCount returns the number of accounts with at least one open stream.
func (h *Hub) AccountCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.streams)
}
