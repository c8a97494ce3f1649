// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware contains the echo middleware of the API.
package middleware

import (
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/anonbox/internal/auth"
	"codeberg.org/oliverandrich/anonbox/internal/services/session"
	"codeberg.org/oliverandrich/anonbox/internal/services/token"
	"github.com/labstack/echo/v4"
)

// UnauthorizedMessage is the message of every 401 response.
const UnauthorizedMessage = "Unauthorized"

// LoadAccount resolves the caller from an "Authorization: Bearer" token or,
// failing that, from the session cookie. Requests without valid credentials
// pass through anonymously.
func LoadAccount(sessions *session.Manager, tokens *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			var account *auth.Account

			if header := r.Header.Get(echo.HeaderAuthorization); tokens != nil && strings.HasPrefix(header, "Bearer ") {
				if claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer ")); err == nil {
					id, _ := claims.AccountID()
					account = &auth.Account{ID: id, Handle: claims.Handle, Method: auth.MethodToken}
				}
			}

			if account == nil && sessions != nil {
				if data, _ := sessions.Parse(r); data != nil {
					account = &auth.Account{ID: data.AccountID, Handle: data.Handle, Method: auth.MethodSession}
				}
			}

			if account != nil {
				c.SetRequest(r.WithContext(auth.WithAccount(r.Context(), account)))
			}
			return next(c)
		}
	}
}

// RequireAuth answers 401 for requests without an authenticated account.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !auth.IsAuthenticated(c.Request().Context()) {
			return c.JSON(http.StatusUnauthorized, map[string]any{
				"success": false,
				"message": UnauthorizedMessage,
			})
		}
		return next(c)
	}
}
