package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

type fakeRefresher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	next    *oauth2.Token
	err     error

	ctxErr atomic.Value // error seen on ctx once released
}

func (f *fakeRefresher) Refresh(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error) {
	f.calls.Add(1)
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.release != nil {
		<-f.release
	}
	if err := ctx.Err(); err != nil {
		f.ctxErr.Store(err)
		return nil, err
	}
	return f.next, f.err
}

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return epoch }

func TestStoreTokenNoSession(t *testing.T) {
	r := &fakeRefresher{}
	s := NewStore(r, WithClock(fixedClock))

	_, err := s.Token(context.Background(), DefaultMinValidity)
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
	if r.calls.Load() != 0 {
		t.Errorf("refresh calls = %d, want 0", r.calls.Load())
	}
}

func TestStoreTokenValidSkipsRefresh(t *testing.T) {
	r := &fakeRefresher{}
	s := NewStore(r, WithClock(fixedClock))
	s.Set(&oauth2.Token{AccessToken: "live", Expiry: epoch.Add(time.Minute)}) //nolint:errcheck

	tok, err := s.Token(context.Background(), DefaultMinValidity)
	if err != nil {
		t.Fatal(err)
	}
	if tok != "live" {
		t.Errorf("token = %q, want live", tok)
	}
	if r.calls.Load() != 0 {
		t.Errorf("refresh calls = %d, want 0", r.calls.Load())
	}
}

func TestStoreTokenConcurrentRefreshOnce(t *testing.T) {
	r := &fakeRefresher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		next:    &oauth2.Token{AccessToken: "fresh", RefreshToken: "r2", Expiry: epoch.Add(time.Hour)},
	}
	s := NewStore(r, WithClock(fixedClock))
	s.Set(&oauth2.Token{AccessToken: "stale", RefreshToken: "r1", Expiry: epoch.Add(3 * time.Second)}) //nolint:errcheck

	var wg sync.WaitGroup
	results := make([]string, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = s.Token(context.Background(), DefaultMinValidity)
	}()
	<-r.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = s.Token(context.Background(), DefaultMinValidity)
	}()
	time.Sleep(20 * time.Millisecond)
	close(r.release)
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("request %d: %v", i, errs[i])
		}
		if results[i] != "fresh" {
			t.Errorf("request %d token = %q, want fresh", i, results[i])
		}
	}
	if got := r.calls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}

	// A later request inside the new validity window does not refresh.
	if _, err := s.Token(context.Background(), DefaultMinValidity); err != nil {
		t.Fatal(err)
	}
	if got := r.calls.Load(); got != 1 {
		t.Errorf("refresh calls after reuse = %d, want 1", got)
	}
}

func TestStoreTokenCallerCancelDoesNotFailWaiters(t *testing.T) {
	r := &fakeRefresher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		next:    &oauth2.Token{AccessToken: "fresh", Expiry: epoch.Add(time.Hour)},
	}
	s := NewStore(r, WithClock(fixedClock))
	s.Set(&oauth2.Token{AccessToken: "stale", RefreshToken: "r1", Expiry: epoch.Add(time.Second)}) //nolint:errcheck

	leaderCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	leaderErr := make(chan error, 1)
	go func() {
		_, err := s.Token(leaderCtx, DefaultMinValidity)
		leaderErr <- err
	}()
	<-r.started

	waiter := make(chan string, 1)
	waiterErr := make(chan error, 1)
	go func() {
		tok, err := s.Token(context.Background(), DefaultMinValidity)
		waiter <- tok
		waiterErr <- err
	}()

	if err := <-leaderErr; !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("leader err = %v, want deadline exceeded", err)
	}
	close(r.release)

	if tok, err := <-waiter, <-waiterErr; err != nil || tok != "fresh" {
		t.Fatalf("waiter = %q, %v; want fresh", tok, err)
	}
	if err, _ := r.ctxErr.Load().(error); err != nil {
		t.Errorf("refresh saw a cancelled context: %v", err)
	}
	if got := r.calls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if s.Session().Token != "fresh" {
		t.Errorf("session token = %q, want fresh", s.Session().Token)
	}
}

func TestStoreTokenRefreshFailure(t *testing.T) {
	r := &fakeRefresher{err: errors.New("connection refused")}
	s := NewStore(r, WithClock(fixedClock))
	s.Set(&oauth2.Token{AccessToken: "stale", RefreshToken: "r1", Expiry: epoch.Add(time.Second)}) //nolint:errcheck

	_, err := s.Token(context.Background(), DefaultMinValidity)
	if !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("err = %v, want ErrRefreshFailed", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("err = %v, want cause in message", err)
	}
	if got := s.Session().Token; got != "stale" {
		t.Errorf("session token = %q, want stale kept", got)
	}
}

func TestStoreTokenNoRefresher(t *testing.T) {
	s := NewStore(nil, WithClock(fixedClock))
	s.Set(&oauth2.Token{AccessToken: "stale", Expiry: epoch.Add(time.Second)}) //nolint:errcheck

	if _, err := s.Token(context.Background(), DefaultMinValidity); !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("err = %v, want ErrRefreshFailed", err)
	}
}

func TestStoreKeepsIDTokenAcrossRefresh(t *testing.T) {
	r := &fakeRefresher{next: &oauth2.Token{AccessToken: "fresh", Expiry: epoch.Add(time.Hour)}}
	s := NewStore(r, WithClock(fixedClock))
	cur := (&oauth2.Token{AccessToken: "stale", RefreshToken: "r1", Expiry: epoch}).
		WithExtra(map[string]any{"id_token": "idt"})
	s.Set(cur) //nolint:errcheck

	if _, err := s.Token(context.Background(), DefaultMinValidity); err != nil {
		t.Fatal(err)
	}
	s.mu.RLock()
	got := IDToken(s.tok)
	s.mu.RUnlock()
	if got != "idt" {
		t.Errorf("id token = %q, want idt", got)
	}
}

func TestStorePersistAndLogout(t *testing.T) {
	f := TokenFile{Path: filepath.Join(t.TempDir(), "wealthwise", "token.json")}
	kc := NewKeycloak("http://sso.test", "wealthwise", "frontend-client")
	s := NewStore(nil, WithTokenFile(f), WithLogoutURL(kc.LogoutURL), WithClock(fixedClock))

	tok := (&oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: epoch.Add(time.Hour)}).
		WithExtra(map[string]any{"id_token": "idt"})
	if err := s.Set(tok); err != nil {
		t.Fatal(err)
	}

	reloaded := NewStore(nil, WithTokenFile(f))
	ok, err := reloaded.Initialize(context.Background())
	if err != nil || !ok {
		t.Fatalf("Initialize = %v, %v; want true, nil", ok, err)
	}
	if got := reloaded.Session().Token; got != "a" {
		t.Errorf("reloaded token = %q, want a", got)
	}

	u, err := s.Logout(context.Background(), "http://localhost/?loggedOut=true")
	if err != nil {
		t.Fatal(err)
	}
	if s.Authenticated() {
		t.Error("still authenticated after logout")
	}
	if f.Exists() {
		t.Error("token file should be removed")
	}
	if !strings.Contains(u, "id_token_hint=idt") || !strings.Contains(u, "post_logout_redirect_uri=") {
		t.Errorf("logout url = %q", u)
	}
}

func TestStoreInitializeWithoutFile(t *testing.T) {
	f := TokenFile{Path: filepath.Join(t.TempDir(), "missing.json")}
	s := NewStore(nil, WithTokenFile(f))
	ok, err := s.Initialize(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Initialize should report unauthenticated without a token file")
	}
}

func TestSessionValidFor(t *testing.T) {
	tests := []struct {
		name string
		s    Session
		want bool
	}{
		{"empty", Session{}, false},
		{"no expiry", Session{Token: "t", Authenticated: true}, true},
		{"plenty", Session{Token: "t", Authenticated: true, ExpiresAt: epoch.Add(time.Minute)}, true},
		{"exactly five", Session{Token: "t", Authenticated: true, ExpiresAt: epoch.Add(5 * time.Second)}, true},
		{"under five", Session{Token: "t", Authenticated: true, ExpiresAt: epoch.Add(4 * time.Second)}, false},
		{"expired", Session{Token: "t", Authenticated: true, ExpiresAt: epoch.Add(-time.Second)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.ValidFor(DefaultMinValidity, epoch); got != tt.want {
				t.Errorf("ValidFor = %v, want %v", got, tt.want)
			}
		})
	}
}
