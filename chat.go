package kickapi

import (
	"context"
	"net/http"
)

// SendMessageRequest is the body for sending a chat message.
type SendMessageRequest struct {
	// Type is the message kind, e.g. "user" or "bot".
	Type string `json:"type"`

	// Content is the message text.
	Content string `json:"content"`

	// BroadcasterUserID selects the channel to send in. Required for
	// type "user"; bot messages go to the app owner's channel.
	BroadcasterUserID int64 `json:"broadcaster_user_id,omitempty"`

	// ReplyToMessageID makes the message a reply.
	ReplyToMessageID string `json:"reply_to_message_id,omitempty"`
}

// SendMessageResponse reports the outcome of sending a message.
type SendMessageResponse struct {
	IsSent    bool   `json:"is_sent"`
	MessageID string `json:"message_id"`
}

// ChatService handles outbound chat messages. Requires the chat:write
// scope; deleting needs moderation:chat_message:manage.
type ChatService struct {
	client *Client
}

// SendMessage posts a chat message.
func (s *ChatService) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	if err := s.client.requireToken(); err != nil {
		return nil, err
	}

	resp, err := doData[SendMessageResponse](ctx, s.client, http.MethodPost, "/chat", nil, req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteMessage removes a chat message by its ID.
func (s *ChatService) DeleteMessage(ctx context.Context, messageID string) error {
	if err := s.client.requireToken(); err != nil {
		return err
	}
	return s.client.do(ctx, http.MethodDelete, "/chat/"+messageID, nil, nil, nil)
}
