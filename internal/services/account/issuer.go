// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package account

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// CodeLength is the number of digits in a verification code.
	CodeLength = 6
	// DefaultCodeTTL is used when no positive TTL is configured.
	DefaultCodeTTL = time.Hour

	codeMin = 100000
	codeMax = 999999
)

// CodeSource returns a number in [0, n).
type CodeSource func(n int64) (int64, error)

// cryptoSource draws from crypto/rand.
func cryptoSource(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

// Issuer produces verification codes and their expiry.
type Issuer struct {
	ttl    time.Duration
	source CodeSource
}

// NewIssuer creates an issuer whose codes stay valid for ttl.
func NewIssuer(ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &Issuer{ttl: ttl, source: cryptoSource}
}

// WithSource replaces the random source. Used by tests.
func (i *Issuer) WithSource(source CodeSource) *Issuer {
	i.source = source
	return i
}

// TTL returns the lifetime of issued codes.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue returns a fresh 6-digit code uniform in [100000, 999999] and
// its expiry, now + TTL.
func (i *Issuer) Issue(now time.Time) (string, time.Time, error) {
	n, err := i.source(codeMax - codeMin + 1)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to draw verification code: %w", err)
	}
	return fmt.Sprintf("%06d", codeMin+n), now.Add(i.ttl), nil
}
