package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoToken means no token has been persisted.
var ErrNoToken = errors.New("no saved token")

// TokenFile persists the provider session between runs.
type TokenFile struct {
	Path string
}

type savedToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// DefaultTokenPath returns ~/.wealthwise/token.json.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home dir: %w", err)
	}
	return filepath.Join(home, ".wealthwise", "token.json"), nil
}

// Load reads the token. It returns ErrNoToken if the file does not exist.
func (f TokenFile) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var saved savedToken
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if saved.AccessToken == "" {
		return nil, ErrNoToken
	}
	tok := &oauth2.Token{
		AccessToken:  saved.AccessToken,
		RefreshToken: saved.RefreshToken,
		TokenType:    saved.TokenType,
		Expiry:       saved.Expiry,
	}
	if saved.IDToken != "" {
		tok = tok.WithExtra(map[string]any{"id_token": saved.IDToken})
	}
	return tok, nil
}

// Save writes the token with owner-only permissions.
func (f TokenFile) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.MarshalIndent(savedToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		IDToken:      IDToken(tok),
		Expiry:       tok.Expiry,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Remove deletes the token file. A missing file is not an error.
func (f TokenFile) Remove() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Exists reports whether a token file is present.
func (f TokenFile) Exists() bool {
	_, err := os.Stat(f.Path)
	return err == nil
}
