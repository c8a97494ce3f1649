// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package account implements registration, email verification, the
// message acceptance gate and the anonymous mailbox.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/models"
	"codeberg.org/oliverandrich/anonbox/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is used for constant-time sign-in to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Store is the persistence the service needs. *repository.Repository implements it.
type Store interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByHandle(ctx context.Context, handle string) (*models.Account, error)
	GetAccountByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	HandleTaken(ctx context.Context, handle string) (bool, error)
	ReplacePendingRegistration(ctx context.Context, id int64, reg repository.PendingRegistration, now time.Time) error
	MarkVerified(ctx context.Context, id int64, now time.Time) error
	SetAcceptingMessages(ctx context.Context, id int64, accepting bool, now time.Time) (*models.Account, error)
	AppendMessage(ctx context.Context, accountID int64, content string, createdAt time.Time) (*models.Message, error)
	ListMessages(ctx context.Context, accountID int64) ([]models.Message, error)
}

// Mailer delivers verification codes.
type Mailer interface {
	SendVerification(ctx context.Context, to, handle, code string, ttl time.Duration) error
}

// Notifier is told about every message that lands in a mailbox.
type Notifier interface {
	NotifyMessage(accountID int64, msg models.Message)
}

type Service struct {
	store    Store
	mailer   Mailer
	notifier Notifier
	issuer   *Issuer
	now      func() time.Time
	hashCost int
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier registers a notifier for ingested messages.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHashCost sets the bcrypt cost for new passwords.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func NewService(store Store, mailer Mailer, issuer *Issuer, opts ...Option) *Service {
	s := &Service{
		store:    store,
		mailer:   mailer,
		issuer:   issuer,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterParams holds the parameters for a sign-up.
type RegisterParams struct {
	Handle   string
	Email    string
	Password string
}

// Register creates an account, or refreshes a pending one with the same
// email, and mails a fresh verification code. The account is stored even
// when the email cannot be delivered; that case returns ErrEmailDelivery.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.Account, error) {
	handle, err := NormalizeHandle(params.Handle)
	if err != nil {
		return nil, err
	}
	email, err := NormalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(params.Password); err != nil {
		return nil, err
	}

	taken, err := s.store.HandleTaken(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to check handle: %w", err)
	}
	if taken {
		slog.Warn("register_failed", "handle", handle, "reason", "handle_taken")
		return nil, ErrHandleTaken
	}

	existing, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil && existing.Verified {
		slog.Warn("register_failed", "email", email, "reason", "email_verified")
		return nil, ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	code, expiry, err := s.issuer.Issue(now)
	if err != nil {
		return nil, err
	}

	var account *models.Account
	if existing != nil {
		err = s.store.ReplacePendingRegistration(ctx, existing.ID, repository.PendingRegistration{
			Handle:           handle,
			PasswordHash:     string(passwordHash),
			VerifyCode:       code,
			VerifyCodeExpiry: expiry,
		}, now)
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update pending account: %w", err)
		}
		account = existing
		account.Handle = handle
		account.PasswordHash = string(passwordHash)
		account.VerifyCode = code
		account.VerifyCodeExpiry = expiry
		account.UpdatedAt = now
	} else {
		account = &models.Account{
			Handle:            handle,
			Email:             email,
			PasswordHash:      string(passwordHash),
			VerifyCode:        code,
			VerifyCodeExpiry:  expiry,
			AcceptingMessages: true,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		err = s.store.CreateAccount(ctx, account)
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
	}

	if err := s.mailer.SendVerification(ctx, email, handle, code, s.issuer.TTL()); err != nil {
		slog.Error("verification_email_failed", "account_id", account.ID, "error", err)
		return account, fmt.Errorf("%w: %w", ErrEmailDelivery, err)
	}

	slog.Info("register_success", "account_id", account.ID, "handle", handle, "refreshed", existing != nil)
	return account, nil
}

// VerifyCode checks a submitted code against the account addressed by
// handle. A wrong code is reported before an expired one.
func (s *Service) VerifyCode(ctx context.Context, handle, code string) (*models.Account, error) {
	handle, err := DecodeHandle(handle)
	if err != nil {
		return nil, err
	}
	if len(code) != CodeLength {
		return nil, invalid("code", "Verification code must be exactly 6 characters long")
	}

	account, err := s.store.GetAccountByHandle(ctx, handle)
	if err != nil {
		return nil, s.lookupError(err)
	}

	now := s.now()
	if !account.CodeMatches(code) {
		slog.Warn("verify_failed", "account_id", account.ID, "reason", "invalid_code")
		return nil, ErrInvalidCode
	}
	if account.CodeExpired(now) {
		slog.Warn("verify_failed", "account_id", account.ID, "reason", "expired")
		return nil, ErrCodeExpired
	}

	if err := s.store.MarkVerified(ctx, account.ID, now); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrHandleTaken
		}
		return nil, s.lookupError(err)
	}
	account.Verified = true

	slog.Info("verify_success", "account_id", account.ID)
	return account, nil
}

// SetAcceptingMessages flips the acceptance gate of the caller's account.
func (s *Service) SetAcceptingMessages(ctx context.Context, accountID int64, accepting bool) (*models.Account, error) {
	account, err := s.store.SetAcceptingMessages(ctx, accountID, accepting, s.now())
	if err != nil {
		return nil, s.lookupError(err)
	}
	slog.Info("accept_messages_updated", "account_id", accountID, "accepting", accepting)
	return account, nil
}

// GetAcceptingMessages reads the acceptance gate of the caller's account.
func (s *Service) GetAcceptingMessages(ctx context.Context, accountID int64) (bool, error) {
	account, err := s.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return false, s.lookupError(err)
	}
	return account.AcceptingMessages, nil
}

// SendMessage delivers an anonymous message to the mailbox behind handle.
// The acceptance check and the insert happen in one statement.
func (s *Service) SendMessage(ctx context.Context, handle, content string) (*models.Message, error) {
	handle, err := DecodeHandle(handle)
	if err != nil {
		return nil, err
	}
	content, err = NormalizeContent(content)
	if err != nil {
		return nil, err
	}

	account, err := s.store.GetAccountByHandle(ctx, handle)
	if err != nil {
		return nil, s.lookupError(err)
	}
	if !account.AcceptingMessages {
		return nil, ErrNotAccepting
	}

	msg, err := s.store.AppendMessage(ctx, account.ID, content, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		// The gate closed or the account vanished after the lookup.
		if _, lookupErr := s.store.GetAccountByID(ctx, account.ID); lookupErr != nil {
			return nil, s.lookupError(lookupErr)
		}
		return nil, ErrNotAccepting
	}
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyMessage(account.ID, *msg)
	}

	slog.Info("message_received", "account_id", account.ID, "message_id", msg.ID)
	return msg, nil
}

// GetMessages returns the caller's mailbox, newest first. An empty mailbox
// is an empty slice.
func (s *Service) GetMessages(ctx context.Context, accountID int64) ([]models.Message, error) {
	if _, err := s.store.GetAccountByID(ctx, accountID); err != nil {
		return nil, s.lookupError(err)
	}
	messages, err := s.store.ListMessages(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// CheckHandle validates the handle and reports ErrHandleTaken when a
// verified account holds it.
func (s *Service) CheckHandle(ctx context.Context, handle string) error {
	handle, err := NormalizeHandle(handle)
	if err != nil {
		return err
	}
	taken, err := s.store.HandleTaken(ctx, handle)
	if err != nil {
		return fmt.Errorf("failed to check handle: %w", err)
	}
	if taken {
		return ErrHandleTaken
	}
	return nil
}

// SignIn authenticates by email or handle.
func (s *Service) SignIn(ctx context.Context, identifier, password string) (*models.Account, error) {
	identifier, err := NormalizeIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	account, err := s.store.GetAccountByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("sign_in_failed", "identifier", identifier, "reason", "account_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		slog.Warn("sign_in_failed", "account_id", account.ID, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}
	if !account.Verified {
		slog.Warn("sign_in_failed", "account_id", account.ID, "reason", "not_verified")
		return nil, ErrNotVerified
	}

	slog.Info("sign_in_success", "account_id", account.ID)
	return account, nil
}

// Account returns the account with the given ID.
func (s *Service) Account(ctx context.Context, accountID int64) (*models.Account, error) {
	account, err := s.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, s.lookupError(err)
	}
	return account, nil
}

func (s *Service) lookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to load account: %w", err)
}
