package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/wealthwise/wealthwise/internal/log"
)

// RefreshTimeout bounds one refresh round trip to the identity provider.
const RefreshTimeout = 30 * time.Second

// Refresher renews a token with the identity provider.
type Refresher interface {
	Refresh(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error)
}

// Store owns the shared session. Reads are concurrent; at most one refresh
// is outstanding and every caller waiting on it sees its result.
type Store struct {
	mu  sync.RWMutex
	tok *oauth2.Token

	refresher Refresher
	file      *TokenFile
	logoutURL func(idToken, redirect string) string
	now       func() time.Time
	logger    *log.Logger

	flight singleflight.Group
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTokenFile persists the token after login and every refresh.
func WithTokenFile(f TokenFile) StoreOption {
	return func(s *Store) { s.file = &f }
}

// WithLogoutURL sets the builder for the provider's end-session URL.
func WithLogoutURL(fn func(idToken, redirect string) string) StoreOption {
	return func(s *Store) { s.logoutURL = fn }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store's logger.
func WithLogger(l *log.Logger) StoreOption {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentAuth) }
}

// NewStore returns an empty store. r may be nil, in which case every refresh
// fails.
func NewStore(r Refresher, opts ...StoreOption) *Store {
	s := &Store{refresher: r, now: time.Now, logger: log.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads a persisted token, if any, and reports whether the store
// is now authenticated. A missing token file is not an error.
func (s *Store) Initialize(ctx context.Context) (bool, error) {
	if s.file == nil {
		return s.Authenticated(), nil
	}
	tok, err := s.file.Load()
	if errors.Is(err, ErrNoToken) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("auth.Initialize: %w", err)
	}
	s.mu.Lock()
	s.tok = tok
	s.mu.Unlock()
	return true, nil
}

// Set replaces the session, as after a login, and persists it.
func (s *Store) Set(tok *oauth2.Token) error {
	s.mu.Lock()
	s.tok = tok
	s.mu.Unlock()
	if s.file != nil && tok != nil {
		if err := s.file.Save(tok); err != nil {
			return fmt.Errorf("auth.Set: %w", err)
		}
	}
	return nil
}

// Session returns a snapshot of the current session.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sessionOf(s.tok)
}

// Authenticated reports whether a session exists.
func (s *Store) Authenticated() bool {
	return s.Session().Authenticated
}

// Token returns an access token valid for at least minValidity, refreshing
// first when needed. It fails with ErrNoSession when there is no session and
// with an error wrapping ErrRefreshFailed when renewal fails.
func (s *Store) Token(ctx context.Context, minValidity time.Duration) (string, error) {
	sess := s.Session()
	if !sess.Authenticated {
		return "", ErrNoSession
	}
	if sess.ValidFor(minValidity, s.now()) {
		return sess.Token, nil
	}

	// The flight outlives any one caller: a caller that gives up stops
	// waiting, while the refresh keeps going for the others.
	ch := s.flight.DoChan("refresh", func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RefreshTimeout)
		defer cancel()
		return s.refresh(fctx, minValidity)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			s.logger.Debug("joined in-flight refresh")
		}
		return res.Val.(string), nil
	}
}

func (s *Store) refresh(ctx context.Context, minValidity time.Duration) (string, error) {
	s.mu.RLock()
	cur := s.tok
	s.mu.RUnlock()

	sess := sessionOf(cur)
	if !sess.Authenticated {
		return "", ErrNoSession
	}
	// Another flight may have finished between the caller's check and ours.
	if sess.ValidFor(minValidity, s.now()) {
		return sess.Token, nil
	}
	if s.refresher == nil {
		return "", fmt.Errorf("%w: no refresh credential", ErrRefreshFailed)
	}

	start := s.now()
	next, err := s.refresher.Refresh(ctx, cur)
	if err != nil {
		s.logger.Warn("token refresh failed", log.FieldError, err)
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if next == nil || next.AccessToken == "" {
		return "", fmt.Errorf("%w: provider returned no access token", ErrRefreshFailed)
	}
	if idToken := IDToken(cur); idToken != "" && IDToken(next) == "" {
		next = next.WithExtra(map[string]any{"id_token": idToken})
	}

	s.mu.Lock()
	s.tok = next
	s.mu.Unlock()
	s.logger.Debug("token refreshed", "expires_at", next.Expiry, log.FieldDuration, s.now().Sub(start).Milliseconds())

	if s.file != nil {
		if err := s.file.Save(next); err != nil {
			s.logger.Warn("persist refreshed token", log.FieldError, err)
		}
	}
	return next.AccessToken, nil
}

// Logout drops the session and its persisted copy. It returns the provider's
// end-session URL for redirect, or "" when none is configured.
func (s *Store) Logout(ctx context.Context, redirect string) (string, error) {
	s.mu.Lock()
	cur := s.tok
	s.tok = nil
	s.mu.Unlock()

	if s.file != nil {
		if err := s.file.Remove(); err != nil {
			return "", fmt.Errorf("auth.Logout: %w", err)
		}
	}
	if s.logoutURL == nil {
		return "", nil
	}
	return s.logoutURL(IDToken(cur), redirect), nil
}

// IDToken returns the OpenID id_token carried by tok, if any.
func IDToken(tok *oauth2.Token) string {
	if tok == nil {
		return ""
	}
	s, _ := tok.Extra("id_token").(string)
	return s
}

func sessionOf(tok *oauth2.Token) Session {
	if tok == nil || tok.AccessToken == "" {
		return Session{}
	}
	return Session{Token: tok.AccessToken, ExpiresAt: tok.Expiry, Authenticated: true}
}
