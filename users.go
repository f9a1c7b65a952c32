package kickapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// User is a Kick account.
type User struct {
	UserID         int64  `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// TokenIntrospection describes the access token used for the request.
type TokenIntrospection struct {
	Active    bool   `json:"active"`
	ClientID  string `json:"client_id,omitempty"`
	TokenType string `json:"token_type,omitempty"`

	// Scope is the space-separated scope list granted to the token.
	Scope string `json:"scope,omitempty"`

	// Exp is the expiry as a unix timestamp in seconds.
	Exp int64 `json:"exp,omitempty"`
}

// Scopes splits the granted scope string into individual scopes.
func (t *TokenIntrospection) Scopes() []string {
	return strings.Fields(t.Scope)
}

// HasScope reports whether the token was granted the given scope.
func (t *TokenIntrospection) HasScope(scope string) bool {
	for _, s := range t.Scopes() {
		if s == scope {
			return true
		}
	}
	return false
}

// IsExpired reports whether the token's expiry has passed.
func (t *TokenIntrospection) IsExpired() bool {
	return t.Exp != 0 && time.Now().Unix() >= t.Exp
}

// UsersService handles user endpoints. Requires the user:read scope.
type UsersService struct {
	client *Client
}

// Get fetches users by ID.
func (s *UsersService) Get(ctx context.Context, ids ...int64) ([]User, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}

	query := url.Values{}
	for _, id := range ids {
		query.Add("id", strconv.FormatInt(id, 10))
	}
	return doData[[]User](ctx, s.client, http.MethodGet, "/users", query, nil)
}

// Me fetches the user the token belongs to.
func (s *UsersService) Me(ctx context.Context) (*User, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}

	users, err := doData[[]User](ctx, s.client, http.MethodGet, "/users", nil, nil)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, &APIError{Status: http.StatusNotFound, Message: "user not found"}
	}
	return &users[0], nil
}

// IntrospectToken asks the API about the token in use.
func (s *UsersService) IntrospectToken(ctx context.Context) (*TokenIntrospection, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}

	info, err := doData[TokenIntrospection](ctx, s.client, http.MethodPost, "/token/introspect", nil, nil)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
