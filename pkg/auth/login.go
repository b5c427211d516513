package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultLoginTimeout bounds how long Login waits for the browser callback.
const DefaultLoginTimeout = 2 * time.Minute

// LoginOptions configures an interactive login.
type LoginOptions struct {
	// Open shows url to the user, normally by launching a browser.
	Open func(url string) error
	// Out receives instructions when Open fails.
	Out     io.Writer
	Timeout time.Duration
}

const callbackHTML = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>WealthWise</title></head>
<body style="font-family:sans-serif;text-align:center;padding-top:4em">
<h2>Signed in to WealthWise</h2>
<p>You can close this window and return to the terminal.</p>
</body></html>`

// Login runs the authorization-code flow with PKCE through a loopback
// redirect and returns the issued token.
func (k *Keycloak) Login(ctx context.Context, opts LoginOptions) (*oauth2.Token, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultLoginTimeout
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("start callback listener: %w", err)
	}
	defer listener.Close() //nolint:errcheck

	port := listener.Addr().(*net.TCPAddr).Port
	cfg := k.config
	cfg.RedirectURL = "http://127.0.0.1:" + strconv.Itoa(port) + "/callback"

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	exchangeCtx := k.context(ctx)

	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)
	fail := func(w http.ResponseWriter, status int, err error) {
		http.Error(w, err.Error(), status)
		select {
		case errCh <- err:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			fail(w, http.StatusForbidden, errors.New("callback state mismatch (possible CSRF)"))
			return
		}
		if e := q.Get("error"); e != "" {
			fail(w, http.StatusBadRequest, fmt.Errorf("provider error: %s %s", e, q.Get("error_description")))
			return
		}
		code := q.Get("code")
		if code == "" {
			fail(w, http.StatusBadRequest, errors.New("callback received without code"))
			return
		}
		tok, err := cfg.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
		if err != nil {
			fail(w, http.StatusBadGateway, fmt.Errorf("code exchange: %w", err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, callbackHTML) //nolint:errcheck
		select {
		case tokenCh <- tok:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if srvErr := srv.Serve(listener); srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			select {
			case errCh <- srvErr:
			default:
			}
		}
	}()
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx) //nolint:errcheck
	}()

	loginURL := cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	if opts.Open == nil || opts.Open(loginURL) != nil {
		fmt.Fprintf(opts.Out, "Could not open browser. Visit this URL manually:\n  %s\n", loginURL) //nolint:errcheck
	}

	timer := time.NewTimer(opts.Timeout)
	defer timer.Stop()

	select {
	case tok := <-tokenCh:
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("login timed out: no callback received within %s", opts.Timeout)
	}
}
