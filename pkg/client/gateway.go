package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wealthwise/wealthwise/internal/log"
	"github.com/wealthwise/wealthwise/pkg/auth"
)

// TokenSource yields an access token with at least minValidity remaining.
// *auth.Store implements it.
type TokenSource interface {
	Token(ctx context.Context, minValidity time.Duration) (string, error)
}

// StaticToken is a fixed bearer token that is never refreshed. An empty
// StaticToken has no session.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context, time.Duration) (string, error) {
	if s == "" {
		return "", auth.ErrNoSession
	}
	return string(s), nil
}

// authorize attaches a fresh bearer token and a request id. It fails without
// touching the network when there is no session or refresh fails.
func (c *Client) authorize(req *http.Request) (string, error) {
	if c.tokens == nil {
		return "", unauthenticated(auth.ErrNoSession)
	}
	token, err := c.tokens.Token(req.Context(), c.minValidity)
	switch {
	case errors.Is(err, auth.ErrNoSession):
		return "", unauthenticated(err)
	case err != nil:
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return "", ctxErr
		}
		c.logger.Warn("credential refresh failed", log.FieldPath, req.URL.Path, log.FieldError, err)
		return "", refreshFailed(err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", requestID)
	return requestID, nil
}
