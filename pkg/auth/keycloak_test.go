package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

const tokenPath = "/realms/wealthwise/protocol/openid-connect/token"

func writeToken(w http.ResponseWriter, access, refresh string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "Bearer",
		"expires_in":    300,
		"id_token":      "idt-" + access,
	})
}

func TestKeycloakEndpoints(t *testing.T) {
	kc := NewKeycloak("http://localhost:3001/", "wealthwise", "frontend-client")
	ep := kc.Endpoint()
	if ep.AuthURL != "http://localhost:3001/realms/wealthwise/protocol/openid-connect/auth" {
		t.Errorf("AuthURL = %q", ep.AuthURL)
	}
	if ep.TokenURL != "http://localhost:3001/realms/wealthwise/protocol/openid-connect/token" {
		t.Errorf("TokenURL = %q", ep.TokenURL)
	}
	u := kc.LogoutURL("", "http://localhost/?loggedOut=true")
	if !strings.HasPrefix(u, "http://localhost:3001/realms/wealthwise/protocol/openid-connect/logout?") {
		t.Errorf("LogoutURL = %q", u)
	}
	if strings.Contains(u, "id_token_hint") {
		t.Errorf("LogoutURL should omit empty id_token_hint: %q", u)
	}
}

func TestKeycloakRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != tokenPath {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q, want refresh_token", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "r1" {
			t.Errorf("refresh_token = %q, want r1", got)
		}
		if got := r.PostForm.Get("client_id"); got != "frontend-client" {
			t.Errorf("client_id = %q, want frontend-client", got)
		}
		writeToken(w, "a2", "r2")
	}))
	defer srv.Close()

	kc := NewKeycloak(srv.URL, "wealthwise", "frontend-client").WithHTTPClient(srv.Client())
	tok, err := kc.Refresh(context.Background(), &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"})
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "a2" || tok.RefreshToken != "r2" {
		t.Errorf("token = %+v", tok)
	}
	if IDToken(tok) != "idt-a2" {
		t.Errorf("id token = %q", IDToken(tok))
	}
	if tok.Expiry.IsZero() {
		t.Error("expiry should be set from expires_in")
	}
}

func TestKeycloakRefreshWithoutRefreshToken(t *testing.T) {
	kc := NewKeycloak("http://unused", "wealthwise", "frontend-client")
	if _, err := kc.Refresh(context.Background(), &oauth2.Token{AccessToken: "a"}); err == nil {
		t.Fatal("expected error without refresh token")
	}
}

func TestKeycloakLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q", got)
		}
		if r.PostForm.Get("code") != "the-code" {
			t.Errorf("code = %q", r.PostForm.Get("code"))
		}
		if r.PostForm.Get("code_verifier") == "" {
			t.Error("missing PKCE code_verifier")
		}
		writeToken(w, "a1", "r1")
	}))
	defer srv.Close()

	kc := NewKeycloak(srv.URL, "wealthwise", "frontend-client").WithHTTPClient(srv.Client())

	open := func(loginURL string) error {
		u, err := url.Parse(loginURL)
		if err != nil {
			return err
		}
		q := u.Query()
		if q.Get("code_challenge_method") != "S256" || q.Get("code_challenge") == "" {
			t.Errorf("login url missing PKCE challenge: %s", loginURL)
		}
		go func() {
			resp, err := http.Get(q.Get("redirect_uri") + "?code=the-code&state=" + url.QueryEscape(q.Get("state")))
			if err == nil {
				resp.Body.Close() //nolint:errcheck
			}
		}()
		return nil
	}

	tok, err := kc.Login(context.Background(), LoginOptions{Open: open, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "a1" {
		t.Errorf("access token = %q, want a1", tok.AccessToken)
	}
}

func TestKeycloakLoginStateMismatch(t *testing.T) {
	kc := NewKeycloak("http://unused", "wealthwise", "frontend-client")
	open := func(loginURL string) error {
		u, _ := url.Parse(loginURL)
		go func() {
			resp, err := http.Get(u.Query().Get("redirect_uri") + "?code=x&state=forged")
			if err == nil {
				resp.Body.Close() //nolint:errcheck
			}
		}()
		return nil
	}
	_, err := kc.Login(context.Background(), LoginOptions{Open: open, Timeout: 5 * time.Second})
	if err == nil || !strings.Contains(err.Error(), "state mismatch") {
		t.Fatalf("err = %v, want state mismatch", err)
	}
}

func TestKeycloakLoginCancelled(t *testing.T) {
	kc := NewKeycloak("http://unused", "wealthwise", "frontend-client")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out strings.Builder
	_, err := kc.Login(ctx, LoginOptions{Out: &out, Timeout: 5 * time.Second})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !strings.Contains(out.String(), "Visit this URL manually") {
		t.Errorf("expected manual URL hint, got %q", out.String())
	}
}

func TestTokenFilePermissions(t *testing.T) {
	f := TokenFile{Path: filepath.Join(t.TempDir(), "nested", "token.json")}
	if _, err := f.Load(); err != ErrNoToken {
		t.Fatalf("Load on missing file = %v, want ErrNoToken", err)
	}
	if err := f.Save(&oauth2.Token{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file perm = %o, want 600", perm)
	}
	tok, err := f.Load()
	if err != nil {
		t.Fatal(err)
	}
	if tok.RefreshToken != "r" {
		t.Errorf("refresh token = %q, want r", tok.RefreshToken)
	}
	if err := f.Remove(); err != nil {
		t.Fatal(err)
	}
	if err := f.Remove(); err != nil {
		t.Errorf("second Remove = %v, want nil", err)
	}
}
