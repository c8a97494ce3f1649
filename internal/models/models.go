// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package models holds the persisted records.
package models

import "time"

// VerificationState is the position of an account in the email verification lifecycle.
type VerificationState int

const (
	// Unverified is the fallback for an account without verification
	// flag or code. Registration always issues a code, so stored accounts
	// start in PendingCode.
	Unverified VerificationState = iota
	// PendingCode accounts hold an issued code that has not been redeemed.
	PendingCode
	// Verified accounts proved control of their email address.
	Verified
)

func (s VerificationState) String() string {
	switch s {
	case PendingCode:
		return "pending_code"
	case Verified:
		return "verified"
	default:
		return "unverified"
	}
}

// Account is a registered user owning a mailbox of anonymous messages.
type Account struct { //nolint:govet // fieldalignment: readability over optimization
	ID                int64     `db:"id" json:"id"`
	Handle            string    `db:"handle" json:"username"`
	Email             string    `db:"email" json:"email"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	VerifyCode        string    `db:"verify_code" json:"-"`
	VerifyCodeExpiry  time.Time `db:"verify_code_expiry" json:"-"`
	Verified          bool      `db:"verified" json:"isVerified"`
	AcceptingMessages bool      `db:"accepting_messages" json:"isAcceptingMessages"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// State derives the verification state from the stored fields.
func (a *Account) State() VerificationState {
	switch {
	case a.Verified:
		return Verified
	case a.VerifyCode != "":
		return PendingCode
	default:
		return Unverified
	}
}

// CodeMatches reports whether code equals the stored verification code.
// An account without a pending code never matches.
func (a *Account) CodeMatches(code string) bool {
	return a.VerifyCode != "" && a.VerifyCode == code
}

// CodeExpired reports whether the stored code is no longer valid at now.
// A code is valid strictly before its expiry.
func (a *Account) CodeExpired(now time.Time) bool {
	return !now.Before(a.VerifyCodeExpiry)
}

// Message is an anonymous message delivered into an account's mailbox.
type Message struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"_id"`
	AccountID int64     `db:"account_id" json:"-"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
