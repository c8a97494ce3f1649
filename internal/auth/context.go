// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides authentication context helpers.
package auth

import (
	"context"

	"codeberg.org/oliverandrich/anonbox/internal/ctxkeys"
)

// Method tells how a request was authenticated.
type Method string

const (
	MethodSession Method = "session"
	MethodToken   Method = "token"
)

// Account is the caller identity resolved from a session cookie or bearer token.
type Account struct {
	ID     int64
	Handle string
	Method Method
}

// WithAccount stores the authenticated account in the context.
func WithAccount(ctx context.Context, account *Account) context.Context {
	return context.WithValue(ctx, ctxkeys.Account{}, account)
}

// GetAccount returns the authenticated account from the context, or nil if not authenticated.
func GetAccount(ctx context.Context) *Account {
	if account, ok := ctx.Value(ctxkeys.Account{}).(*Account); ok {
		return account
	}
	return nil
}

// IsAuthenticated returns true if the context has an authenticated account.
func IsAuthenticated(ctx context.Context) bool {
	return GetAccount(ctx) != nil
}
