// Package oauth implements the Kick authorization-code flow with PKCE.
//
// The typical sequence for a local tool:
//
//	cfg, err := oauth.FromEnv()
//	authURL, state, verifier := cfg.AuthorizationURL("user:read", "chat:write")
//	// direct the user to authURL, then receive code on the redirect URI
//	token, err := cfg.Exchange(ctx, code, verifier)
package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Kick OAuth endpoints.
const (
	AuthURL   = "https://id.kick.com/oauth/authorize"
	TokenURL  = "https://id.kick.com/oauth/token"
	RevokeURL = "https://id.kick.com/oauth/revoke"
)

// Environment variables read by FromEnv.
const (
	EnvClientID     = "KICK_CLIENT_ID"
	EnvClientSecret = "KICK_CLIENT_SECRET"
	EnvRedirectURI  = "KICK_REDIRECT_URI"
)

// Scopes known to the Kick API.
const (
	ScopeUserRead        = "user:read"
	ScopeChannelRead     = "channel:read"
	ScopeChannelWrite    = "channel:write"
	ScopeChatWrite       = "chat:write"
	ScopeRewardsRead     = "channel:rewards:read"
	ScopeRewardsWrite    = "channel:rewards:write"
	ScopeStreamkeyRead   = "streamkey:read"
	ScopeEventsSubscribe = "events:subscribe"
	ScopeModerationBan   = "moderation:ban"
)

// Token holds the credentials returned by the token endpoint.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}

// Config drives the authorization-code flow for one registered app.
type Config struct {
	oauth oauth2.Config

	httpClient *http.Client
	revokeURL  string
}

// Option configures a Config.
type Option func(*Config)

// WithHTTPClient replaces the HTTP client used for token requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) { c.httpClient = hc }
}

// WithEndpoints overrides the provider endpoints, e.g. for tests.
func WithEndpoints(authURL, tokenURL, revokeURL string) Option {
	return func(c *Config) {
		c.oauth.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
		c.revokeURL = revokeURL
	}
}

// New creates a Config for the given app credentials.
func New(clientID, clientSecret, redirectURI string, opts ...Option) *Config {
	c := &Config{
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint:     oauth2.Endpoint{AuthURL: AuthURL, TokenURL: TokenURL},
		},
		httpClient: &http.Client{Timeout: 15 * time.Second},
		revokeURL:  RevokeURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromEnv creates a Config from KICK_CLIENT_ID, KICK_CLIENT_SECRET and
// KICK_REDIRECT_URI.
func FromEnv(opts ...Option) (*Config, error) {
	clientID := os.Getenv(EnvClientID)
	if clientID == "" {
		return nil, fmt.Errorf("%s is not set", EnvClientID)
	}
	clientSecret := os.Getenv(EnvClientSecret)
	if clientSecret == "" {
		return nil, fmt.Errorf("%s is not set", EnvClientSecret)
	}
	redirectURI := os.Getenv(EnvRedirectURI)
	if redirectURI == "" {
		return nil, fmt.Errorf("%s is not set", EnvRedirectURI)
	}
	return New(clientID, clientSecret, redirectURI, opts...), nil
}

// RedirectURI returns the configured redirect URI.
func (c *Config) RedirectURI() string {
	return c.oauth.RedirectURL
}

// AuthorizationURL builds the URL to send the user to. It returns the URL
// along with the state and PKCE verifier that must be kept for the
// callback and Exchange.
func (c *Config) AuthorizationURL(scopes ...string) (authURL, state, verifier string) {
	cfg := c.oauth
	cfg.Scopes = scopes

	state = oauth2.GenerateVerifier()
	verifier = oauth2.GenerateVerifier()
	authURL = cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	return authURL, state, verifier
}

// Exchange trades an authorization code for tokens. The verifier must be
// the one returned by AuthorizationURL.
func (c *Config) Exchange(ctx context.Context, code, verifier string) (*Token, error) {
	tok, err := c.oauth.Exchange(c.withClient(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return fromOAuth2(tok), nil
}

// Refresh obtains a fresh token pair from a refresh token. Kick rotates
// refresh tokens, so callers should store the returned one.
func (c *Config) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token is empty")
	}

	src := c.oauth.TokenSource(c.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}
	return fromOAuth2(tok), nil
}

// Revoke invalidates an access or refresh token.
func (c *Config) Revoke(ctx context.Context, token, tokenHintType string) error {
	form := url.Values{"token": {token}}
	if tokenHintType != "" {
		form.Set("token_hint_type", tokenHintType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.revokeURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("revoking token: status %d: %s", resp.StatusCode,
			strings.TrimSpace(string(body)))
	}
	return nil
}

// withClient makes the oauth2 package use our HTTP client.
func (c *Config) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func fromOAuth2(tok *oauth2.Token) *Token {
	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
}
