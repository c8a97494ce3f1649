// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session stores the signed-in account in a signed cookie.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/config"
	"github.com/gorilla/securecookie"
)

const keyLength = 32

// Data is the payload of a session cookie.
type Data struct {
	AccountID int64     `json:"aid"`
	Handle    string    `json:"h"`
	ExpiresAt time.Time `json:"exp"`
}

// Manager issues and reads session cookies.
type Manager struct {
	codec  *securecookie.SecureCookie
	name   string
	maxAge int
	secure bool
}

// NewManager creates a session manager. An empty hash key is replaced by a
// random one, which invalidates sessions on every restart.
func NewManager(cfg *config.SessionConfig, secure bool) (*Manager, error) {
	hashKey, err := decodeKey(cfg.HashKey, "hash")
	if err != nil {
		return nil, err
	}
	if hashKey == nil {
		hashKey = make([]byte, keyLength)
		if _, err := rand.Read(hashKey); err != nil {
			return nil, fmt.Errorf("failed to generate session hash key: %w", err)
		}
		slog.Warn("session_hash_key_generated", "hint", "set --session-hash-key to keep sessions across restarts")
	}

	blockKey, err := decodeKey(cfg.BlockKey, "block")
	if err != nil {
		return nil, err
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(cfg.MaxAge)
	codec.SetSerializer(securecookie.JSONEncoder{})

	return &Manager{
		codec:  codec,
		name:   cfg.CookieName,
		maxAge: cfg.MaxAge,
		secure: secure,
	}, nil
}

func decodeKey(value, kind string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid session %s key: %w", kind, err)
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("invalid session %s key: must be %d bytes, got %d", kind, keyLength, len(key))
	}
	return key, nil
}

// Create returns a cookie that signs in the given account.
func (m *Manager) Create(accountID int64, handle string) (*http.Cookie, error) {
	data := Data{
		AccountID: accountID,
		Handle:    handle,
		ExpiresAt: time.Now().Add(time.Duration(m.maxAge) * time.Second),
	}
	value, err := m.codec.Encode(m.name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return m.cookie(value, m.maxAge), nil
}

// Parse reads the session from the request. A missing, tampered or
// expired cookie yields nil without an error.
func (m *Manager) Parse(r *http.Request) (*Data, error) {
	c, err := r.Cookie(m.name)
	if err != nil {
		return nil, nil //nolint:nilerr // no cookie means no session
	}

	var data Data
	if err := m.codec.Decode(m.name, c.Value, &data); err != nil {
		return nil, nil //nolint:nilerr // invalid cookie means no session
	}
	if !data.ExpiresAt.IsZero() && time.Now().After(data.ExpiresAt) {
		return nil, nil
	}
	return &data, nil
}

// Clear returns a cookie that removes the session.
func (m *Manager) Clear() *http.Cookie {
	return m.cookie("", -1)
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.name
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
