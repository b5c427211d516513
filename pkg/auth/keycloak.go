package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// Keycloak talks to a Keycloak realm's OpenID Connect endpoints.
type Keycloak struct {
	config     oauth2.Config
	base       string
	httpClient *http.Client
}

// NewKeycloak configures a public client for realm at authURL.
func NewKeycloak(authURL, realm, clientID string) *Keycloak {
	base := strings.TrimRight(authURL, "/") + "/realms/" + url.PathEscape(realm) + "/protocol/openid-connect"
	return &Keycloak{
		base: base,
		config: oauth2.Config{
			ClientID: clientID,
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + "/auth",
				TokenURL:  base + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{"openid"},
		},
	}
}

// WithHTTPClient sets the client used for token requests.
func (k *Keycloak) WithHTTPClient(c *http.Client) *Keycloak {
	k.httpClient = c
	return k
}

// Endpoint returns the realm's OAuth2 endpoints.
func (k *Keycloak) Endpoint() oauth2.Endpoint {
	return k.config.Endpoint
}

func (k *Keycloak) context(ctx context.Context) context.Context {
	if k.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, k.httpClient)
}

// Refresh runs the refresh-token grant.
func (k *Keycloak) Refresh(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error) {
	if current == nil || current.RefreshToken == "" {
		return nil, errors.New("no refresh token")
	}
	// An empty access token makes the source go straight to the refresh grant.
	src := k.config.TokenSource(k.context(ctx), &oauth2.Token{RefreshToken: current.RefreshToken})
	return src.Token()
}

// LogoutURL returns the end-session URL that redirects to redirect.
func (k *Keycloak) LogoutURL(idToken, redirect string) string {
	params := url.Values{}
	params.Set("client_id", k.config.ClientID)
	if redirect != "" {
		params.Set("post_logout_redirect_uri", redirect)
	}
	if idToken != "" {
		params.Set("id_token_hint", idToken)
	}
	return k.base + "/logout?" + params.Encode()
}
