// Package kickapi provides a typed client for the Kick.com public REST API.
//
// Most endpoints require an OAuth access token (see the oauth package for
// the authorization-code flow). The live chat feed is served over a
// separate WebSocket transport implemented by the livechat package.
//
//	client := kickapi.New(kickapi.WithToken(token))
//	channel, err := client.Channels().Get(ctx, "xqc")
package kickapi

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the Kick public API root.
const DefaultBaseURL = "https://api.kick.com/public/v1"

// defaultHTTPTimeout bounds each API request end to end. Kick usually
// responds within a few seconds; retrying beats waiting.
const defaultHTTPTimeout = 15 * time.Second

// Client is the Kick API facade. Endpoint groups are reached through the
// service accessors; all of them share one HTTP client and token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	log        *slog.Logger

	channels   *ChannelsService
	chat       *ChatService
	moderation *ModerationService
	rewards    *RewardsService
	users      *UsersService
	events     *EventsService
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the OAuth access token sent as a bearer credential.
// Without a token only public endpoints are reachable.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the API root, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithLogger sets the logger used for request debug logging.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client. Use WithToken for authenticated endpoints.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.channels = &ChannelsService{client: c}
	c.chat = &ChatService{client: c}
	c.moderation = &ModerationService{client: c}
	c.rewards = &RewardsService{client: c}
	c.users = &UsersService{client: c}
	c.events = &EventsService{client: c}
	return c
}

// Channels returns the channel endpoints.
func (c *Client) Channels() *ChannelsService { return c.channels }

// Chat returns the chat message endpoints.
func (c *Client) Chat() *ChatService { return c.chat }

// Moderation returns the ban/unban endpoints.
func (c *Client) Moderation() *ModerationService { return c.moderation }

// Rewards returns the channel reward endpoints.
func (c *Client) Rewards() *RewardsService { return c.rewards }

// Users returns the user and token introspection endpoints.
func (c *Client) Users() *UsersService { return c.users }

// Events returns the webhook subscription endpoints.
func (c *Client) Events() *EventsService { return c.events }

func (c *Client) requireToken() error {
	if c.token == "" {
		return ErrTokenRequired
	}
	return nil
}
