package kickapi

import (
	"context"
	"net/http"
)

// BanRequest bans or times out a user in a channel. With Duration set the
// ban is a timeout; without it the ban is permanent.
type BanRequest struct {
	BroadcasterUserID int64 `json:"broadcaster_user_id"`
	UserID            int64 `json:"user_id"`

	// Reason is shown to moderators, max 100 characters.
	Reason string `json:"reason,omitempty"`

	// Duration is the timeout length in seconds; zero means permanent.
	Duration int `json:"duration,omitempty"`
}

// UnbanRequest lifts a ban or timeout.
type UnbanRequest struct {
	BroadcasterUserID int64 `json:"broadcaster_user_id"`
	UserID            int64 `json:"user_id"`
}

// ModerationService handles ban endpoints. Requires the moderation:ban scope.
type ModerationService struct {
	client *Client
}

// Ban bans or times out a user.
func (s *ModerationService) Ban(ctx context.Context, req BanRequest) error {
	if err := s.client.requireToken(); err != nil {
		return err
	}
	return s.client.do(ctx, http.MethodPost, "/moderation/bans", nil, req, nil)
}

// Unban lifts a ban or timeout.
func (s *ModerationService) Unban(ctx context.Context, req UnbanRequest) error {
	if err := s.client.requireToken(); err != nil {
		return err
	}
	return s.client.do(ctx, http.MethodDelete, "/moderation/bans", nil, req, nil)
}
