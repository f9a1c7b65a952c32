package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
)

// CallbackResult is the outcome delivered to the redirect URI.
type CallbackResult struct {
	Code  string
	State string
}

// AwaitCallback runs a one-shot HTTP listener on the redirect URI and waits
// for the authorization redirect. It verifies the state parameter against
// wantState and returns the authorization code. The listener shuts down as
// soon as one redirect arrives or ctx is done.
func (c *Config) AwaitCallback(ctx context.Context, wantState string) (string, error) {
	redirect, err := url.Parse(c.oauth.RedirectURL)
	if err != nil {
		return "", fmt.Errorf("parsing redirect URI: %w", err)
	}
	if redirect.Scheme != "http" {
		return "", fmt.Errorf("redirect URI %q is not a local http listener", c.oauth.RedirectURL)
	}

	path := redirect.Path
	if path == "" {
		path = "/"
	}

	results := make(chan CallbackResult, 1)
	router := chi.NewRouter()
	router.Get(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if errCode := q.Get("error"); errCode != "" {
			http.Error(w, "Authorization failed: "+errCode, http.StatusBadRequest)
			select {
			case results <- CallbackResult{}:
			default:
			}
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "Authorization received. You can close this tab.")
		select {
		case results <- CallbackResult{Code: q.Get("code"), State: q.Get("state")}:
		default:
		}
	})

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return "", fmt.Errorf("listening on %s: %w", redirect.Host, err)
	}

	srv := &http.Server{Handler: router}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	select {
	case res := <-results:
		if res.Code == "" {
			return "", errors.New("authorization was denied")
		}
		if res.State != wantState {
			return "", errors.New("state mismatch on callback")
		}
		return res.Code, nil
	case err := <-serveErr:
		return "", fmt.Errorf("callback listener: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
