// Package auth holds the identity session and keeps its access token fresh.
package auth

import (
	"errors"
	"time"
)

// DefaultMinValidity is the remaining lifetime below which a token is refreshed
// before use.
const DefaultMinValidity = 5 * time.Second

var (
	// ErrNoSession means there is no authenticated session to use.
	ErrNoSession = errors.New("no active session")
	// ErrRefreshFailed wraps any failure to renew the access token.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// Session is a snapshot of the identity state.
type Session struct {
	Token         string
	ExpiresAt     time.Time
	Authenticated bool
}

// ValidFor reports whether the token has at least d left at now. A token
// without an expiry never expires.
func (s Session) ValidFor(d time.Duration, now time.Time) bool {
	if !s.Authenticated || s.Token == "" {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return true
	}
	return s.ExpiresAt.Sub(now) >= d
}
