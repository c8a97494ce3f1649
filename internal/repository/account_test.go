// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/models"
	"codeberg.org/oliverandrich/anonbox/internal/repository"
	"codeberg.org/oliverandrich/anonbox/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour).UTC()

	account := &models.Account{
		Handle:            "alice",
		Email:             "a@x.com",
		PasswordHash:      "hash",
		VerifyCode:        "654321",
		VerifyCodeExpiry:  expiry,
		AcceptingMessages: true,
	}
	err := repo.CreateAccount(ctx, account)

	require.NoError(t, err)
	assert.NotZero(t, account.ID)

	stored, err := repo.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Handle)
	assert.Equal(t, "a@x.com", stored.Email)
	assert.Equal(t, "654321", stored.VerifyCode)
	assert.WithinDuration(t, expiry, stored.VerifyCodeExpiry, time.Millisecond)
	assert.False(t, stored.Verified)
	assert.True(t, stored.AcceptingMessages)
	assert.Equal(t, models.PendingCode, stored.State())
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	testutil.NewTestAccount(t, repo, "alice")

	err := repo.CreateAccount(context.Background(), &models.Account{
		Handle:           "other",
		Email:            "alice@example.com",
		PasswordHash:     "hash",
		VerifyCodeExpiry: time.Now(),
	})

	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestCreateAccount_UnverifiedHandlesMayRepeat(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	first := testutil.NewTestAccount(t, repo, "alice")

	second := &models.Account{
		Handle:           "alice",
		Email:            "second@example.com",
		PasswordHash:     "hash",
		VerifyCodeExpiry: time.Now(),
	}
	err := repo.CreateAccount(context.Background(), second)

	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestGetAccountByID_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetAccountByID(context.Background(), 999)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetAccountByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	created := testutil.NewTestAccount(t, repo, "alice")

	account, err := repo.GetAccountByEmail(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, created.ID, account.ID)
}

func TestGetAccountByEmail_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetAccountByEmail(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetAccountByHandle_PrefersVerified(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	verified := testutil.NewTestAccount(t, repo, "alice", testutil.Verified())
	pending := &models.Account{
		Handle:           "alice",
		Email:            "pending@example.com",
		PasswordHash:     "hash",
		VerifyCodeExpiry: time.Now(),
		UpdatedAt:        time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.CreateAccount(ctx, pending))

	account, err := repo.GetAccountByHandle(ctx, "alice")

	require.NoError(t, err)
	assert.Equal(t, verified.ID, account.ID)
}

func TestGetAccountByHandle_CaseSensitive(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	testutil.NewTestAccount(t, repo, "alice")

	_, err := repo.GetAccountByHandle(context.Background(), "Alice")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetAccountByIdentifier(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	created := testutil.NewTestAccount(t, repo, "alice")

	byHandle, err := repo.GetAccountByIdentifier(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byHandle.ID)

	byEmail, err := repo.GetAccountByIdentifier(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.GetAccountByIdentifier(ctx, "bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestHandleTaken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.NewTestAccount(t, repo, "pending")
	testutil.NewTestAccount(t, repo, "taken", testutil.Verified())

	taken, err := repo.HandleTaken(ctx, "taken")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.HandleTaken(ctx, "pending")
	require.NoError(t, err)
	assert.False(t, taken, "unverified accounts only reserve a handle")

	taken, err = repo.HandleTaken(ctx, "free")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestReplacePendingRegistration(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "alice")
	expiry := time.Now().Add(2 * time.Hour).UTC()

	err := repo.ReplacePendingRegistration(ctx, account.ID, repository.PendingRegistration{
		Handle:           "alice2",
		PasswordHash:     "newhash",
		VerifyCode:       "999999",
		VerifyCodeExpiry: expiry,
	}, time.Now())
	require.NoError(t, err)

	stored, err := repo.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", stored.Handle)
	assert.Equal(t, "newhash", stored.PasswordHash)
	assert.Equal(t, "999999", stored.VerifyCode)
	assert.WithinDuration(t, expiry, stored.VerifyCodeExpiry, time.Millisecond)
}

func TestReplacePendingRegistration_VerifiedAccount(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "alice", testutil.Verified())

	err := repo.ReplacePendingRegistration(ctx, account.ID, repository.PendingRegistration{
		Handle:       "mallory",
		PasswordHash: "newhash",
		VerifyCode:   "999999",
	}, time.Now())

	require.ErrorIs(t, err, repository.ErrConflict)

	stored, err := repo.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Handle)
}

func TestMarkVerified(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "alice")

	require.NoError(t, repo.MarkVerified(ctx, account.ID, time.Now()))

	stored, err := repo.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.Verified)

	// Marking again is a no-op
	require.NoError(t, repo.MarkVerified(ctx, account.ID, time.Now()))
}

func TestMarkVerified_HandleAlreadyVerified(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.NewTestAccount(t, repo, "alice", testutil.Verified())
	pending := &models.Account{
		Handle:           "alice",
		Email:            "late@example.com",
		PasswordHash:     "hash",
		VerifyCodeExpiry: time.Now(),
	}
	require.NoError(t, repo.CreateAccount(ctx, pending))

	err := repo.MarkVerified(ctx, pending.ID, time.Now())

	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestMarkVerified_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.MarkVerified(context.Background(), 999, time.Now())

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSetAcceptingMessages(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "alice", testutil.Verified())

	updated, err := repo.SetAcceptingMessages(ctx, account.ID, false, time.Now())

	require.NoError(t, err)
	assert.False(t, updated.AcceptingMessages)

	updated, err = repo.SetAcceptingMessages(ctx, account.ID, true, time.Now())

	require.NoError(t, err)
	assert.True(t, updated.AcceptingMessages)
}

func TestSetAcceptingMessages_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.SetAcceptingMessages(context.Background(), 999, false, time.Now())

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeletingAccountRemovesMailbox(t *testing.T) {
	db, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "alice", testutil.Verified())
	_, err := repo.AppendMessage(ctx, account.ID, "hello", time.Now())
	require.NoError(t, err)

	testutil.DeleteAccount(t, db, account.ID)

	count, err := repo.CountMessages(ctx, account.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.GetAccountByID(ctx, account.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
