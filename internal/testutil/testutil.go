// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/database"
	"codeberg.org/oliverandrich/anonbox/internal/models"
	"codeberg.org/oliverandrich/anonbox/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// AccountOption customizes a test account before it is stored.
type AccountOption func(*models.Account)

// Verified marks the test account as verified.
func Verified() AccountOption {
	return func(a *models.Account) {
		a.Verified = true
	}
}

// NotAccepting turns off message acceptance for the test account.
func NotAccepting() AccountOption {
	return func(a *models.Account) {
		a.AcceptingMessages = false
	}
}

// WithCode sets the pending verification code and its expiry.
func WithCode(code string, expiry time.Time) AccountOption {
	return func(a *models.Account) {
		a.VerifyCode = code
		a.VerifyCodeExpiry = expiry
	}
}

// NewTestAccount creates a test account in the database. By default the
// account is unverified, accepts messages and holds code 123456 valid for an hour.
func NewTestAccount(t *testing.T, repo *repository.Repository, handle string, opts ...AccountOption) *models.Account {
	t.Helper()
	account := &models.Account{
		Handle:            handle,
		Email:             handle + "@example.com",
		PasswordHash:      "not-a-real-hash",
		VerifyCode:        "123456",
		VerifyCodeExpiry:  time.Now().Add(time.Hour).UTC(),
		AcceptingMessages: true,
	}
	for _, opt := range opts {
		opt(account)
	}
	err := repo.CreateAccount(context.Background(), account)
	require.NoError(t, err)
	return account
}

// DeleteAccount removes an account row directly. The application never
// deletes accounts; tests use this to check the mailbox cascade.
func DeleteAccount(t *testing.T, db *sqlx.DB, id int64) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), `DELETE FROM accounts WHERE id = ?`, id)
	require.NoError(t, err)
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
