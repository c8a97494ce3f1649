// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"codeberg.org/oliverandrich/anonbox/internal/auth"
	"codeberg.org/oliverandrich/anonbox/internal/services/account"
	"github.com/labstack/echo/v4"
)

type signUpRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// SignUp registers an account and mails a verification code.
func (h *Handlers) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	_, err := h.accounts.Register(c.Request().Context(), account.RegisterParams{
		Handle:   req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return fail(c, err)
	}

	return ok(c, http.StatusCreated, Response{Message: MsgRegistered})
}

type verifyCodeRequest struct {
	Username string `json:"username" validate:"required"`
	Code     string `json:"code" validate:"required,len=6"`
}

// VerifyCode checks the emailed code and verifies the account.
func (h *Handlers) VerifyCode(c echo.Context) error {
	var req verifyCodeRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	if _, err := h.accounts.VerifyCode(c.Request().Context(), req.Username, req.Code); err != nil {
		return fail(c, err)
	}

	return ok(c, http.StatusOK, Response{Message: MsgVerified})
}

// CheckUsernameUnique reports whether a handle is free.
func (h *Handlers) CheckUsernameUnique(c echo.Context) error {
	err := h.accounts.CheckHandle(c.Request().Context(), c.QueryParam("username"))
	if errors.Is(err, account.ErrValidation) {
		return failure(c, http.StatusBadRequest, MsgInvalidHandle)
	}
	if err != nil {
		return fail(c, err)
	}

	return ok(c, http.StatusOK, Response{Message: MsgHandleAvailable})
}

type signInRequest struct {
	Identifier string `json:"identifier" validate:"required,min=3,max=100"`
	Password   string `json:"password" validate:"required,min=6,max=100"`
}

// SignIn authenticates by email or handle. It sets the session cookie and
// returns a bearer token for API clients.
func (h *Handlers) SignIn(c echo.Context) error {
	var req signInRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	ctx := c.Request().Context()

	if !h.limiter.Allow(ctx, req.Identifier) {
		return failure(c, http.StatusTooManyRequests, MsgTooManyAttempts)
	}

	acc, err := h.accounts.SignIn(ctx, req.Identifier, req.Password)
	if err != nil {
		return fail(c, err)
	}
	h.limiter.Reset(ctx, req.Identifier)

	cookie, err := h.sessions.Create(acc.ID, acc.Handle)
	if err != nil {
		return fail(c, err)
	}
	signed, _, err := h.tokens.Issue(acc.ID, acc.Handle)
	if err != nil {
		return fail(c, err)
	}
	c.SetCookie(cookie)

	return ok(c, http.StatusOK, Response{Message: MsgSignedIn, Data: acc, Token: signed})
}

// SignOut clears the session cookie.
func (h *Handlers) SignOut(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return ok(c, http.StatusOK, Response{Message: MsgSignedOut})
}

// Me returns the signed-in account.
func (h *Handlers) Me(c echo.Context) error {
	caller := auth.GetAccount(c.Request().Context())

	acc, err := h.accounts.Account(c.Request().Context(), caller.ID)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, http.StatusOK, Response{Message: MsgAccountFound, Data: acc})
}
