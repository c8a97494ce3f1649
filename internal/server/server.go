// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/config"
	"codeberg.org/oliverandrich/anonbox/internal/database"
	"codeberg.org/oliverandrich/anonbox/internal/handlers"
	"codeberg.org/oliverandrich/anonbox/internal/i18n"
	"codeberg.org/oliverandrich/anonbox/internal/repository"
	"codeberg.org/oliverandrich/anonbox/internal/services/account"
	"codeberg.org/oliverandrich/anonbox/internal/services/email"
	"codeberg.org/oliverandrich/anonbox/internal/services/ratelimit"
	"codeberg.org/oliverandrich/anonbox/internal/services/session"
	"codeberg.org/oliverandrich/anonbox/internal/services/token"
	"codeberg.org/oliverandrich/anonbox/internal/sse"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (migrations run on open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Redis is optional; without it sign-in is not throttled.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = ratelimit.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()
	}

	app, err := newApp(cfg, repository.New(db), redisClient)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()

	setupMiddleware(e, cfg, app)
	setupRoutes(e, app)

	return startWithGracefulShutdown(ctx, e, cfg)
}

// app bundles the wired services behind the routes.
type app struct {
	handlers *handlers.Handlers
	sessions *session.Manager
	tokens   *token.Manager
}

func newApp(cfg *config.Config, repo *repository.Repository, redisClient *redis.Client) (*app, error) {
	mailer, err := newMailer(cfg)
	if err != nil {
		return nil, err
	}

	hub := sse.NewHub()
	accounts := account.NewService(repo, mailer, account.NewIssuer(cfg.Verification.CodeTTL),
		account.WithNotifier(hub),
	)

	sessions, err := session.NewManager(&cfg.Session, cfg.SecureCookies())
	if err != nil {
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}

	tokens, err := token.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to init tokens: %w", err)
	}

	var limiter *ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewLimiter(redisClient, cfg.Redis.SignInAttempts, time.Minute)
	}

	return &app{
		handlers: handlers.New(accounts, sessions, tokens, limiter, hub),
		sessions: sessions,
		tokens:   tokens,
	}, nil
}

// newMailer returns the SMTP sender, or the log sender when no SMTP host
// is configured.
func newMailer(cfg *config.Config) (account.Mailer, error) {
	if !cfg.SMTP.Enabled() {
		slog.Warn("smtp_disabled", "hint", "verification codes are written to the log")
		return email.NewLogSender(slog.Default()), nil
	}
	sender, err := email.NewSender(&cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("failed to init mailer: %w", err)
	}
	return sender, nil
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-quit.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
