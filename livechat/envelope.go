package livechat

import (
	"encoding/json"
	"fmt"
)

// DefaultURL is the public Pusher endpoint backing Kick's live chat.
// The query string pins the protocol version and client metadata the relay
// expects; no credentials are involved.
const DefaultURL = "wss://ws-us2.pusher.com/app/32cbd69e4b950bf97679?protocol=7&client=js&version=8.4.0&flash=false"

// EventChatMessage is the event name carrying chat messages. Events with
// this name decode into ChatMessage via a second JSON pass.
const EventChatMessage = `App\Events\ChatMessageEvent`

// Pusher protocol event names and reserved namespaces.
const (
	eventConnectionEstablished = "pusher:connection_established"
	eventSubscriptionSucceeded = "pusher_internal:subscription_succeeded"
	eventSubscribe             = "pusher:subscribe"
	eventPing                  = "pusher:ping"
	eventPong                  = "pusher:pong"

	prefixProtocol = "pusher:"
	prefixInternal = "pusher_internal:"
)

// channelName derives the Pusher channel for a chatroom.
func channelName(chatroomID int64) string {
	return fmt.Sprintf("chatrooms.%d.v2", chatroomID)
}

// command is a client-to-relay frame. Data is serialized as a JSON object.
type command struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type subscribeData struct {
	Auth    string `json:"auth"`
	Channel string `json:"channel"`
}

// envelope is a relay-to-client frame. The relay double-encodes application
// payloads: Data is usually a JSON string that itself contains JSON, but
// protocol events may carry a bare object, so it is kept raw here and
// unwrapped by payload.
type envelope struct {
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
	Channel string          `json:"channel,omitempty"`
}

// decodeEnvelope parses a text frame into an envelope. A frame that is not
// valid JSON or has no event name is not an envelope.
func decodeEnvelope(frame []byte) (*envelope, bool) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil || env.Event == "" {
		return nil, false
	}
	return &env, true
}

// payload returns the inner data string. Double-encoded payloads are
// unquoted; anything else is returned as raw JSON text.
func (e *envelope) payload() string {
	var s string
	if err := json.Unmarshal(e.Data, &s); err == nil {
		return s
	}
	return string(e.Data)
}
