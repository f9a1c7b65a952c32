package livechat

// Event is a decoded, application-level occurrence from the subscribed
// channel. Data holds the inner JSON payload as text; events named
// EventChatMessage decode into ChatMessage.
type Event struct {
	// Event is the relay event name (e.g. App\Events\ChatMessageEvent).
	Event string

	// Channel is the channel the event was received on, if any.
	Channel string

	// Data is the raw inner JSON payload. The relay double-encodes it, so a
	// second decode is needed to obtain a typed value.
	Data string
}

// ChatMessage is a chat utterance decoded from a chat-message event.
type ChatMessage struct {
	// ID uniquely identifies the message.
	ID string `json:"id"`

	// ChatroomID is the chatroom the message was sent in. Not present in
	// every payload variant.
	ChatroomID int64 `json:"chatroom_id,omitempty"`

	// Content is the message text.
	Content string `json:"content"`

	// Type is the message kind, e.g. "message" or "reply".
	Type string `json:"type"`

	// CreatedAt is an ISO 8601 timestamp, when provided.
	CreatedAt string `json:"created_at,omitempty"`

	// Sender is the message author.
	Sender Sender `json:"sender"`

	// Metadata is present on replies.
	Metadata *MessageMetadata `json:"metadata,omitempty"`
}

// Sender is the author of a chat message.
type Sender struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Slug     string   `json:"slug,omitempty"`
	Identity Identity `json:"identity"`
}

// Identity is the sender's visual identity in chat.
type Identity struct {
	// Color is the username color hex code.
	Color string `json:"color"`

	// Badges are the markers shown next to the username.
	Badges []Badge `json:"badges"`
}

// Badge is a visual marker attached to a sender.
type Badge struct {
	Type string `json:"type"`
	Text string `json:"text"`

	// Count is set for badges that carry one, e.g. subscription months.
	Count int `json:"count,omitempty"`
}

// MessageMetadata describes the message a reply refers to.
type MessageMetadata struct {
	OriginalSender  *OriginalSender  `json:"original_sender,omitempty"`
	OriginalMessage *OriginalMessage `json:"original_message,omitempty"`
}

// OriginalSender is the author of the message being replied to.
type OriginalSender struct {
	Username string `json:"username"`
}

// OriginalMessage is the content of the message being replied to.
type OriginalMessage struct {
	Content string `json:"content"`
}
