// Package livechat streams Kick live chat over the public Pusher WebSocket.
//
// A Session subscribes to one chatroom's channel and yields events in real
// time; no authentication is required. The chatroom ID for a channel can be
// found at https://kick.com/api/v2/channels/{slug} under "chatroom":{"id":.
//
//	chat, err := livechat.Connect(ctx, 27670567)
//	if err != nil {
//		return err
//	}
//	defer chat.Close()
//	for {
//		msg, err := chat.NextMessage(ctx)
//		if err != nil || msg == nil {
//			return err
//		}
//		fmt.Printf("%s: %s\n", msg.Sender.Username, msg.Content)
//	}
package livechat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/coder/websocket"

	"github.com/kickwire/kickapi/internal/telemetry"
)

// errStreamEnd marks a graceful close of the relay connection. It never
// escapes the package; callers see a nil event instead.
var errStreamEnd = errors.New("stream ended")

// frameConn is the message-oriented transport a Session exclusively owns.
// *websocket.Conn satisfies it; tests substitute an in-memory fake.
// Transport-level ping control frames are answered inside Read by the
// websocket implementation and never reach this layer.
type frameConn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// Session is one live connection to the relay for exactly one chatroom.
//
// A Session owns its transport and has no internal locking: at most one
// operation may be in flight at a time, and concurrent callers must
// serialize access externally (commonly a single goroutine owns the Session
// and fans results out over a channel).
type Session struct {
	conn  frameConn
	state sessionState
	log   *slog.Logger
}

// Option configures a Session at Connect time.
type Option func(*options)

type options struct {
	url string
	log *slog.Logger
}

// WithURL overrides the relay endpoint, e.g. for a different Pusher region.
func WithURL(url string) Option {
	return func(o *options) { o.url = url }
}

// WithLogger sets the logger used for discarded-frame debug logging.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Connect opens a session for the given chatroom and completes the
// subscribe handshake. It returns only after the relay has acknowledged
// both the connection and the subscription; on any failure the transport is
// closed and a *ConnectError is returned.
func Connect(ctx context.Context, chatroomID int64, opts ...Option) (*Session, error) {
	o := options{url: DefaultURL, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	conn, _, err := websocket.Dial(ctx, o.url, nil)
	if err != nil {
		return nil, &ConnectError{ChatroomID: chatroomID, Err: err}
	}
	conn.SetReadLimit(128 << 10) // 128 KB

	s, err := newSession(ctx, conn, chatroomID, o.log)
	if err != nil {
		conn.Close(websocket.StatusProtocolError, "handshake failed")
		return nil, err
	}
	return s, nil
}

// newSession runs the subscribe handshake over an open transport. Split
// from Connect so the handshake is testable without a live socket.
func newSession(ctx context.Context, conn frameConn, chatroomID int64, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{conn: conn, state: stateConnecting, log: log}

	for s.state != stateReady {
		_, err := s.next(ctx)
		if err != nil {
			if errors.Is(err, errStreamEnd) {
				err = fmt.Errorf("connection closed during %s", s.state)
			}
			return nil, &ConnectError{ChatroomID: chatroomID, Err: err}
		}

		switch s.state {
		case stateConnecting:
			// env is pusher:connection_established.
			sub := command{
				Event: eventSubscribe,
				Data:  subscribeData{Auth: "", Channel: channelName(chatroomID)},
			}
			if err := s.writeCommand(ctx, sub); err != nil {
				return nil, &ConnectError{ChatroomID: chatroomID, Err: err}
			}
			s.state = stateSubscribing
		case stateSubscribing:
			// env is pusher_internal:subscription_succeeded.
			s.state = stateReady
		}
	}

	log.Debug("Subscribed to chatroom", "chatroom_id", chatroomID, "channel", channelName(chatroomID))
	return s, nil
}

// NextEvent returns the next application event from the relay.
//
// It answers keepalive pings and discards protocol-internal and malformed
// frames without caller involvement. A nil event with a nil error means the
// relay closed the connection; that result is terminal and repeats on every
// later call. Errors are *TransportError and also leave the session closed.
func (s *Session) NextEvent(ctx context.Context) (*Event, error) {
	if s.state == stateClosed {
		return nil, nil
	}

	env, err := s.next(ctx)
	if err != nil {
		s.state = stateClosed
		if errors.Is(err, errStreamEnd) {
			return nil, nil
		}
		return nil, err
	}

	return &Event{Event: env.Event, Channel: env.Channel, Data: env.payload()}, nil
}

// NextMessage returns the next chat message, skipping all other events and
// any chat-message payload that fails to decode. A nil message with a nil
// error means the relay closed the connection.
func (s *Session) NextMessage(ctx context.Context) (*ChatMessage, error) {
	for {
		ev, err := s.NextEvent(ctx)
		if err != nil || ev == nil {
			return nil, err
		}
		if ev.Event != EventChatMessage {
			continue
		}

		// The payload is double-encoded: ev.Data is a JSON string inside the
		// already-decoded envelope. An unparseable payload is an unrecognized
		// variant, not an error.
		var msg ChatMessage
		if err := json.Unmarshal([]byte(ev.Data), &msg); err != nil {
			telemetry.IncFrameDiscarded()
			s.log.Debug("Dropping undecodable chat payload", "error", err)
			continue
		}
		telemetry.IncChatMessageDecoded()
		return &msg, nil
	}
}

// SendPing sends a protocol-level keepalive ping. The relay answers with a
// pong event, which the receive loop consumes internally.
func (s *Session) SendPing(ctx context.Context) error {
	return s.writeCommand(ctx, command{Event: eventPing, Data: struct{}{}})
}

// Close closes the transport gracefully. The session is terminal afterwards.
func (s *Session) Close() error {
	if s.state == stateClosed {
		return nil
	}
	s.state = stateClosed
	return s.conn.Close(websocket.StatusNormalClosure, "")
}

// next runs the receive loop until a frame either advances the handshake or
// is deliverable to the caller, answering keepalives and dropping noise
// along the way.
func (s *Session) next(ctx context.Context) (*envelope, error) {
	for {
		env, err := s.readEnvelope(ctx)
		if err != nil {
			return nil, err
		}

		switch dispatch(s.state, env) {
		case dispAnswerPing:
			telemetry.IncKeepaliveAnswered()
			if err := s.writeCommand(ctx, command{Event: eventPong, Data: struct{}{}}); err != nil {
				return nil, err
			}
		case dispAdvance, dispDeliver:
			return env, nil
		case dispDiscard:
			telemetry.IncFrameDiscarded()
			s.log.Debug("Discarding frame", "event", env.Event, "state", s.state.String())
		}
	}
}

// readEnvelope reads frames until one decodes as an envelope. Binary and
// malformed frames are dropped; a graceful close surfaces as errStreamEnd.
func (s *Session) readEnvelope(ctx context.Context) (*envelope, error) {
	for {
		typ, frame, err := s.conn.Read(ctx)
		if err != nil {
			if isStreamEnd(err) {
				return nil, errStreamEnd
			}
			return nil, &TransportError{Op: "read", Err: err}
		}

		if typ != websocket.MessageText {
			telemetry.IncFrameDiscarded()
			continue
		}

		env, ok := decodeEnvelope(frame)
		if !ok {
			telemetry.IncFrameDiscarded()
			continue
		}
		return env, nil
	}
}

func (s *Session) writeCommand(ctx context.Context, cmd command) error {
	frame, err := json.Marshal(cmd)
	if err != nil {
		return &TransportError{Op: "encode " + cmd.Event, Err: err}
	}
	if err := s.conn.Write(ctx, websocket.MessageText, frame); err != nil {
		return &TransportError{Op: "send " + cmd.Event, Err: err}
	}
	return nil
}

// isStreamEnd reports whether a read error means the peer closed the
// connection normally rather than the transport failing.
func isStreamEnd(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
