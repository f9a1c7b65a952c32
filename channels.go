package kickapi

import (
	"context"
	"net/http"
	"net/url"
)

// Channel describes a broadcaster's channel.
type Channel struct {
	ActiveSubscribersCount   int       `json:"active_subscribers_count"`
	BannerPicture            string    `json:"banner_picture,omitempty"`
	BroadcasterUserID        int64     `json:"broadcaster_user_id"`
	CanceledSubscribersCount int       `json:"canceled_subscribers_count"`
	Category                 *Category `json:"category,omitempty"`
	ChannelDescription       string    `json:"channel_description,omitempty"`
	Slug                     string    `json:"slug"`
	Stream                   *Stream   `json:"stream,omitempty"`
	StreamTitle              string    `json:"stream_title,omitempty"`
}

// Category is the content category a channel streams under.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Stream describes a channel's current broadcast.
type Stream struct {
	CustomTags  []string `json:"custom_tags"`
	IsLive      bool     `json:"is_live"`
	IsMature    bool     `json:"is_mature"`
	Key         string   `json:"key"`
	Language    string   `json:"language"`
	StartTime   string   `json:"start_time"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	URL         string   `json:"url"`
	ViewerCount int      `json:"viewer_count"`
}

// ChannelsService handles channel endpoints. Requires the channel:read scope.
type ChannelsService struct {
	client *Client
}

// Get fetches a channel by its slug.
func (s *ChannelsService) Get(ctx context.Context, slug string) (*Channel, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}

	channels, err := doData[[]Channel](ctx, s.client, http.MethodGet, "/channels",
		url.Values{"slug": {slug}}, nil)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, &APIError{Status: http.StatusNotFound, Message: "channel not found"}
	}
	return &channels[0], nil
}

// Mine lists the authenticated user's channels.
func (s *ChannelsService) Mine(ctx context.Context) ([]Channel, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}
	return doData[[]Channel](ctx, s.client, http.MethodGet, "/channels", nil, nil)
}
