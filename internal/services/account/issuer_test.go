// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package account_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/services/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_Issue(t *testing.T) {
	issuer := account.NewIssuer(time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for range 100 {
		code, expiry, err := issuer.Issue(now)
		require.NoError(t, err)

		assert.Len(t, code, account.CodeLength)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
		assert.Equal(t, now.Add(time.Hour), expiry)
	}
}

func TestIssuer_Bounds(t *testing.T) {
	now := time.Now()

	low := account.NewIssuer(time.Hour).WithSource(func(int64) (int64, error) { return 0, nil })
	code, _, err := low.Issue(now)
	require.NoError(t, err)
	assert.Equal(t, "100000", code)

	high := account.NewIssuer(time.Hour).WithSource(func(n int64) (int64, error) { return n - 1, nil })
	code, _, err = high.Issue(now)
	require.NoError(t, err)
	assert.Equal(t, "999999", code)
}

func TestIssuer_SourceError(t *testing.T) {
	issuer := account.NewIssuer(time.Hour).WithSource(func(int64) (int64, error) {
		return 0, errors.New("entropy exhausted")
	})

	_, _, err := issuer.Issue(time.Now())

	assert.Error(t, err)
}

func TestIssuer_DefaultTTL(t *testing.T) {
	assert.Equal(t, account.DefaultCodeTTL, account.NewIssuer(0).TTL())
	assert.Equal(t, 10*time.Minute, account.NewIssuer(10*time.Minute).TTL())
}
