package kickapi

import (
	"context"
	"net/http"
	"net/url"
)

// ChannelReward is a redeemable channel points reward.
type ChannelReward struct {
	// ID is a ULID assigned by Kick.
	ID string `json:"id"`

	// Title names the reward, max 50 characters.
	Title string `json:"title"`

	// Description explains the reward, max 200 characters.
	Description string `json:"description"`

	// Cost is the redemption price in channel points, minimum 1.
	Cost int `json:"cost"`

	IsEnabled           bool `json:"is_enabled"`
	IsPaused            bool `json:"is_paused"`
	IsUserInputRequired bool `json:"is_user_input_required"`

	// ShouldRedemptionsSkipRequestQueue auto-accepts redemptions.
	ShouldRedemptionsSkipRequestQueue bool `json:"should_redemptions_skip_request_queue"`

	// BackgroundColor is a hex color code.
	BackgroundColor string `json:"background_color"`
}

// CreateRewardRequest is the body for creating a reward. Title and Cost are
// required; pointer fields are omitted when nil.
type CreateRewardRequest struct {
	Title string `json:"title"`
	Cost  int    `json:"cost"`

	Description                       *string `json:"description,omitempty"`
	IsEnabled                         *bool   `json:"is_enabled,omitempty"`
	IsPaused                          *bool   `json:"is_paused,omitempty"`
	IsUserInputRequired               *bool   `json:"is_user_input_required,omitempty"`
	ShouldRedemptionsSkipRequestQueue *bool   `json:"should_redemptions_skip_request_queue,omitempty"`
	BackgroundColor                   *string `json:"background_color,omitempty"`
}

// UpdateRewardRequest is the body for a partial reward update. Only non-nil
// fields are sent.
type UpdateRewardRequest struct {
	Title                             *string `json:"title,omitempty"`
	Description                       *string `json:"description,omitempty"`
	Cost                              *int    `json:"cost,omitempty"`
	IsEnabled                         *bool   `json:"is_enabled,omitempty"`
	IsPaused                          *bool   `json:"is_paused,omitempty"`
	IsUserInputRequired               *bool   `json:"is_user_input_required,omitempty"`
	ShouldRedemptionsSkipRequestQueue *bool   `json:"should_redemptions_skip_request_queue,omitempty"`
	BackgroundColor                   *string `json:"background_color,omitempty"`
}

// RedemptionStatus is the lifecycle state of a redemption.
type RedemptionStatus string

const (
	RedemptionPending  RedemptionStatus = "pending"
	RedemptionAccepted RedemptionStatus = "accepted"
	RedemptionRejected RedemptionStatus = "rejected"
)

// Redemption is one user's redemption of a reward.
type Redemption struct {
	ID         string           `json:"id"`
	RedeemedAt string           `json:"redeemed_at"`
	Redeemer   RedemptionUser   `json:"redeemer"`
	Status     RedemptionStatus `json:"status"`
	UserInput  string           `json:"user_input,omitempty"`
}

// RedemptionUser identifies who redeemed a reward.
type RedemptionUser struct {
	UserID int64 `json:"user_id"`
}

// FailureReason explains why a redemption could not be processed.
type FailureReason string

const (
	FailureUnknown    FailureReason = "UNKNOWN"
	FailureNotPending FailureReason = "NOT_PENDING"
	FailureNotFound   FailureReason = "NOT_FOUND"
	FailureNotOwned   FailureReason = "NOT_OWNED"
)

// FailedRedemption pairs a redemption ID with its failure reason.
type FailedRedemption struct {
	ID     string        `json:"id"`
	Reason FailureReason `json:"reason"`
}

// ManageRedemptionsResponse reports the outcome of a batch accept/reject.
type ManageRedemptionsResponse struct {
	Data   []Redemption       `json:"data"`
	Failed []FailedRedemption `json:"failed,omitempty"`
}

type manageRedemptionsRequest struct {
	IDs []string `json:"ids"`
}

// RewardsService handles channel reward endpoints. Reads require the
// channel:rewards:read scope, writes channel:rewards:write.
type RewardsService struct {
	client *Client
}

// All lists the channel's rewards.
func (s *RewardsService) All(ctx context.Context) ([]ChannelReward, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}
	return doData[[]ChannelReward](ctx, s.client, http.MethodGet, "/channels/rewards", nil, nil)
}

// Create adds a new reward.
func (s *RewardsService) Create(ctx context.Context, req CreateRewardRequest) (*ChannelReward, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}
	reward, err := doData[ChannelReward](ctx, s.client, http.MethodPost, "/channels/rewards", nil, req)
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

// Update applies a partial update to a reward.
func (s *RewardsService) Update(ctx context.Context, rewardID string, req UpdateRewardRequest) (*ChannelReward, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}
	reward, err := doData[ChannelReward](ctx, s.client, http.MethodPatch, "/channels/rewards/"+rewardID, nil, req)
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

// Delete removes a reward.
func (s *RewardsService) Delete(ctx context.Context, rewardID string) error {
	if err := s.client.requireToken(); err != nil {
		return err
	}
	return s.client.do(ctx, http.MethodDelete, "/channels/rewards/"+rewardID, nil, nil, nil)
}

// Redemptions lists redemptions, optionally filtered by reward and status.
// The API defaults to pending redemptions when status is empty.
func (s *RewardsService) Redemptions(ctx context.Context, rewardID string, status RedemptionStatus) ([]Redemption, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}

	query := url.Values{}
	if rewardID != "" {
		query.Set("reward_id", rewardID)
	}
	if status != "" {
		query.Set("status", string(status))
	}
	return doData[[]Redemption](ctx, s.client, http.MethodGet, "/channels/rewards/redemptions", query, nil)
}

// AcceptRedemptions accepts 1-25 pending redemptions.
func (s *RewardsService) AcceptRedemptions(ctx context.Context, redemptionIDs []string) (*ManageRedemptionsResponse, error) {
	return s.manageRedemptions(ctx, "accept", redemptionIDs)
}

// RejectRedemptions rejects 1-25 pending redemptions.
func (s *RewardsService) RejectRedemptions(ctx context.Context, redemptionIDs []string) (*ManageRedemptionsResponse, error) {
	return s.manageRedemptions(ctx, "reject", redemptionIDs)
}

func (s *RewardsService) manageRedemptions(ctx context.Context, action string, ids []string) (*ManageRedemptionsResponse, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}

	// Unlike the other reward endpoints, this response is not wrapped in a
	// plain data envelope: failures ride alongside the data list.
	var resp ManageRedemptionsResponse
	err := s.client.do(ctx, http.MethodPost, "/channels/rewards/redemptions/"+action, nil,
		manageRedemptionsRequest{IDs: ids}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
