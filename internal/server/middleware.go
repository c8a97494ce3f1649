// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"fmt"

	"codeberg.org/oliverandrich/anonbox/internal/config"
	"codeberg.org/oliverandrich/anonbox/internal/middleware"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func setupMiddleware(e *echo.Echo, cfg *config.Config, a *app) {
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.LoadAccount(a.sessions, a.tokens))
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Secure())
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dM", max(cfg.Server.MaxBodySize, 1))))
	e.Use(middleware.Locale())
}

func setupRoutes(e *echo.Echo, a *app) {
	h := a.handlers

	e.GET("/health", h.Health)

	// Public API
	e.POST("/api/sign-up", h.SignUp)
	e.POST("/api/verify-code", h.VerifyCode)
	e.GET("/api/check-username-unique", h.CheckUsernameUnique)
	e.POST("/api/sign-in", h.SignIn)
	e.POST("/api/sign-out", h.SignOut)
	e.POST("/api/send-message", h.SendMessage)

	// Signed-in API
	api := e.Group("/api", middleware.RequireAuth)
	api.GET("/me", h.Me)
	api.POST("/accept-messages", h.SetAcceptMessages)
	api.GET("/accept-messages", h.GetAcceptMessages)
	api.GET("/get-messages", h.GetMessages)
	api.GET("/events", h.Events)
}
