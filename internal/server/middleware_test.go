// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/config"
	"codeberg.org/oliverandrich/anonbox/internal/handlers"
	"codeberg.org/oliverandrich/anonbox/internal/repository"
	"codeberg.org/oliverandrich/anonbox/internal/services/email"
	"codeberg.org/oliverandrich/anonbox/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:       config.ServerConfig{Host: "localhost", Port: 8080, BaseURL: "http://localhost:8080", MaxBodySize: 1},
		Session:      config.SessionConfig{CookieName: "_session", MaxAge: 3600},
		JWT:          config.JWTConfig{Secret: "test-secret", TTL: time.Hour},
		Verification: config.VerificationConfig{CodeTTL: time.Hour},
	}
}

func newTestServer(t *testing.T) (*echo.Echo, *repository.Repository) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	cfg := testConfig()

	a, err := newApp(cfg, repo, nil)
	require.NoError(t, err)

	e := echo.New()
	e.Validator = handlers.NewValidator()
	setupMiddleware(e, cfg, a)
	setupRoutes(e, a)
	return e, repo
}

type call struct {
	method, path, body string
	cookies            []*http.Cookie
}

func serve(e *echo.Echo, c call) *httptest.ResponseRecorder {
	req := testutil.NewRequest(c.method, c.path, strings.NewReader(c.body))
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) handlers.Response {
	t.Helper()
	var resp handlers.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestNewMailer(t *testing.T) {
	cfg := testConfig()

	mailer, err := newMailer(cfg)
	require.NoError(t, err)
	assert.IsType(t, &email.LogSender{}, mailer)

	cfg.SMTP = config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"}
	mailer, err = newMailer(cfg)
	require.NoError(t, err)
	assert.IsType(t, &email.Sender{}, mailer)

	cfg.SMTP.From = ""
	_, err = newMailer(cfg)
	assert.Error(t, err)
}

func TestRoutes_Health(t *testing.T) {
	e, _ := newTestServer(t)

	rec := serve(e, call{method: http.MethodGet, path: "/health"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
}

func TestRoutes_TrailingSlash(t *testing.T) {
	e, _ := newTestServer(t)

	rec := serve(e, call{method: http.MethodGet, path: "/health/"})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_ProtectedWithoutSession(t *testing.T) {
	e, _ := newTestServer(t)

	for _, path := range []string{"/api/me", "/api/accept-messages", "/api/get-messages", "/api/events"} {
		t.Run(path, func(t *testing.T) {
			rec := serve(e, call{method: http.MethodGet, path: path})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRoutes_BodyLimit(t *testing.T) {
	e, _ := newTestServer(t)

	body := `{"username":"alice","content":"` + strings.Repeat("x", 2<<20) + `"}`
	rec := serve(e, call{method: http.MethodPost, path: "/api/send-message", body: body})

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// TestRoutes_MailboxFlow walks a user through sign-up, verification and
// sign-in, then delivers and reads an anonymous message.
func TestRoutes_MailboxFlow(t *testing.T) {
	e, repo := newTestServer(t)

	rec := serve(e, call{method: http.MethodPost, path: "/api/sign-up",
		body: `{"username":"alice","email":"alice@example.com","password":"secret123"}`})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	stored, err := repo.GetAccountByHandle(context.Background(), "alice")
	require.NoError(t, err)

	rec = serve(e, call{method: http.MethodPost, path: "/api/verify-code",
		body: `{"username":"alice","code":"` + stored.VerifyCode + `"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(e, call{method: http.MethodPost, path: "/api/sign-in",
		body: `{"identifier":"alice","password":"secret123"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = serve(e, call{method: http.MethodGet, path: "/api/get-messages", cookies: cookies})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handlers.MsgNoMessages, decode(t, rec).Message)

	rec = serve(e, call{method: http.MethodPost, path: "/api/send-message",
		body: `{"username":"alice","content":"you rock"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(e, call{method: http.MethodGet, path: "/api/get-messages", cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "you rock", resp.Messages[0].Content)

	rec = serve(e, call{method: http.MethodPost, path: "/api/accept-messages",
		body: `{"acceptMessages":false}`, cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(e, call{method: http.MethodPost, path: "/api/send-message",
		body: `{"username":"alice","content":"still there?"}`})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, handlers.MsgNotAccepting, decode(t, rec).Message)
}
