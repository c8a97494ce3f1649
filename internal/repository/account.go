// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/models"
)

const accountColumns = `id, handle, email, password_hash, verify_code, verify_code_expiry,
	verified, accepting_messages, created_at, updated_at`

// CreateAccount inserts a new account and sets its ID.
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = account.CreatedAt
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (handle, email, password_hash, verify_code, verify_code_expiry,
			verified, accepting_messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.Handle, account.Email, account.PasswordHash, account.VerifyCode, account.VerifyCodeExpiry.UTC(),
		account.Verified, account.AcceptingMessages, account.CreatedAt.UTC(), account.UpdatedAt.UTC())
	if err != nil {
		return wrapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	account.ID = id
	return nil
}

// GetAccountByID retrieves an account by ID.
func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByEmail retrieves an account by email address.
func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByHandle retrieves the account addressed by handle. A verified
// holder wins; otherwise the most recently updated pending registration.
func (r *Repository) GetAccountByHandle(ctx context.Context, handle string) (*models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account,
		`SELECT `+accountColumns+` FROM accounts WHERE handle = ?
		ORDER BY verified DESC, updated_at DESC, id DESC LIMIT 1`, handle)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByIdentifier retrieves an account by email or handle.
func (r *Repository) GetAccountByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ? OR handle = ?
		ORDER BY verified DESC, updated_at DESC, id DESC LIMIT 1`, identifier, identifier)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// HandleTaken reports whether a verified account holds the handle.
func (r *Repository) HandleTaken(ctx context.Context, handle string) (bool, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM accounts WHERE handle = ? AND verified = 1`, handle)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PendingRegistration holds the fields a repeated sign-up overwrites.
type PendingRegistration struct {
	Handle           string
	PasswordHash     string
	VerifyCode       string
	VerifyCodeExpiry time.Time
}

// ReplacePendingRegistration overwrites the registration fields of an
// unverified account in a single statement. It returns ErrConflict when the
// account got verified in the meantime.
func (r *Repository) ReplacePendingRegistration(ctx context.Context, id int64, reg PendingRegistration, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET handle = ?, password_hash = ?, verify_code = ?, verify_code_expiry = ?, updated_at = ?
		WHERE id = ? AND verified = 0`,
		reg.Handle, reg.PasswordHash, reg.VerifyCode, reg.VerifyCodeExpiry.UTC(), now.UTC(), id)
	if err != nil {
		return wrapError(err)
	}
	if err := expectRows(res); err != nil {
		return ErrConflict
	}
	return nil
}

// MarkVerified flags the account as verified. Marking an already verified
// account again is a no-op. Returns ErrConflict if another verified account
// already holds the handle.
func (r *Repository) MarkVerified(ctx context.Context, id int64, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET verified = 1, updated_at = ? WHERE id = ?`, now.UTC(), id)
	if err != nil {
		return wrapError(err)
	}
	return expectRows(res)
}

// SetAcceptingMessages updates the acceptance flag and returns the updated account.
func (r *Repository) SetAcceptingMessages(ctx context.Context, id int64, accepting bool, now time.Time) (*models.Account, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET accepting_messages = ?, updated_at = ? WHERE id = ?`, accepting, now.UTC(), id)
	if err != nil {
		return nil, wrapError(err)
	}
	if err := expectRows(res); err != nil {
		return nil, err
	}
	return r.GetAccountByID(ctx, id)
}
