package kickapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Webhook event types the API can deliver.
const (
	EventChatMessageCreated = "chat.message.created"
	EventChannelFollowed    = "channel.followed"
)

// EventSubscription is an active webhook subscription.
type EventSubscription struct {
	ID                string `json:"id"`
	AppID             string `json:"app_id"`
	BroadcasterUserID int64  `json:"broadcaster_user_id"`
	Event             string `json:"event"`
	Version           int    `json:"version"`
	Method            string `json:"method"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

// SubscribeEvent names one event type to subscribe to.
type SubscribeEvent struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// SubscribeRequest is the body for creating webhook subscriptions.
type SubscribeRequest struct {
	// BroadcasterUserID scopes the subscriptions to a channel. Zero means
	// the token owner's channel.
	BroadcasterUserID int64 `json:"broadcaster_user_id,omitempty"`

	// Method is the delivery method; only "webhook" is supported.
	Method string `json:"method,omitempty"`

	Events []SubscribeEvent `json:"events"`
}

// SubscribeResult reports the outcome for one requested event type.
type SubscribeResult struct {
	Name           string `json:"name"`
	Version        int    `json:"version"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	Error          string `json:"error,omitempty"`
}

// EventsService handles webhook subscription endpoints. Requires the
// events:subscribe scope.
type EventsService struct {
	client *Client
}

// List returns the app's active subscriptions, optionally filtered by
// broadcaster. Zero means no filter.
func (s *EventsService) List(ctx context.Context, broadcasterUserID int64) ([]EventSubscription, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}

	var query url.Values
	if broadcasterUserID != 0 {
		query = url.Values{"broadcaster_user_id": {strconv.FormatInt(broadcasterUserID, 10)}}
	}
	return doData[[]EventSubscription](ctx, s.client, http.MethodGet, "/events/subscriptions", query, nil)
}

// Subscribe creates webhook subscriptions for the requested event types.
// The API reports per-event outcomes, so a partial failure is not an error.
func (s *EventsService) Subscribe(ctx context.Context, req SubscribeRequest) ([]SubscribeResult, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}
	if req.Method == "" {
		req.Method = "webhook"
	}
	return doData[[]SubscribeResult](ctx, s.client, http.MethodPost, "/events/subscriptions", nil, req)
}

// Unsubscribe deletes subscriptions by ID.
func (s *EventsService) Unsubscribe(ctx context.Context, ids ...string) error {
	if err := s.client.requireToken(); err != nil {
		return err
	}

	query := url.Values{}
	for _, id := range ids {
		query.Add("id", id)
	}
	return s.client.do(ctx, http.MethodDelete, "/events/subscriptions", query, nil, nil)
}
