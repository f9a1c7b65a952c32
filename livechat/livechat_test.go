package livechat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/coder/websocket"
)

type fakeFrame struct {
	typ  websocket.MessageType
	data []byte
}

// fakeConn feeds a scripted sequence of frames to the session and records
// everything written back. Once the script runs out it reports readErr, or a
// normal closure if none is set.
type fakeConn struct {
	frames  []fakeFrame
	readErr error

	writes    [][]byte
	closed    bool
	closeCode websocket.StatusCode
}

func (c *fakeConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	if len(c.frames) == 0 {
		if c.readErr != nil {
			return 0, nil, c.readErr
		}
		return 0, nil, websocket.CloseError{Code: websocket.StatusNormalClosure}
	}
	f := c.frames[0]
	c.frames = c.frames[1:]
	return f.typ, f.data, nil
}

func (c *fakeConn) Write(ctx context.Context, typ websocket.MessageType, p []byte) error {
	cp := make([]byte, len(p))
	copy(cp, p)
	c.writes = append(c.writes, cp)
	return nil
}

func (c *fakeConn) Close(code websocket.StatusCode, reason string) error {
	c.closed = true
	c.closeCode = code
	return nil
}

// pusherFrame builds an inbound relay frame. inner is the payload before
// double encoding; it is embedded as a JSON string, matching the wire shape.
func pusherFrame(t *testing.T, event, channel, inner string) fakeFrame {
	t.Helper()
	frame, err := json.Marshal(struct {
		Event   string `json:"event"`
		Data    string `json:"data"`
		Channel string `json:"channel,omitempty"`
	}{Event: event, Data: inner, Channel: channel})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return fakeFrame{websocket.MessageText, frame}
}

func handshakeFrames(t *testing.T, chatroomID int64) []fakeFrame {
	t.Helper()
	return []fakeFrame{
		pusherFrame(t, eventConnectionEstablished, "", `{"socket_id":"123.456"}`),
		pusherFrame(t, eventSubscriptionSucceeded, channelName(chatroomID), `{}`),
	}
}

// writtenEvents decodes the event names of everything the session sent.
func writtenEvents(t *testing.T, conn *fakeConn) []string {
	t.Helper()
	var events []string
	for _, w := range conn.writes {
		var cmd struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(w, &cmd); err != nil {
			t.Fatalf("session wrote invalid JSON %q: %v", w, err)
		}
		events = append(events, cmd.Event)
	}
	return events
}

func countEvents(events []string, name string) int {
	n := 0
	for _, e := range events {
		if e == name {
			n++
		}
	}
	return n
}

func TestHandshakeOrdering(t *testing.T) {
	const room = 27670567

	conn := &fakeConn{frames: append(
		[]fakeFrame{pusherFrame(t, eventPing, "", `{}`)},
		pusherFrame(t, eventConnectionEstablished, "", `{"socket_id":"1.1"}`),
		pusherFrame(t, eventPing, "", `{}`),
		pusherFrame(t, eventSubscriptionSucceeded, "chatrooms.27670567.v2", `{}`),
	)}

	s, err := newSession(context.Background(), conn, room, nil)
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	if s.state != stateReady {
		t.Fatalf("state = %s, want ready", s.state)
	}

	events := writtenEvents(t, conn)
	want := []string{eventPong, eventSubscribe, eventPong}
	if len(events) != len(want) {
		t.Fatalf("writes = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("writes = %v, want %v", events, want)
		}
	}

	// Verify the subscribe payload names the derived channel with empty auth.
	var sub struct {
		Event string `json:"event"`
		Data  struct {
			Auth    string `json:"auth"`
			Channel string `json:"channel"`
		} `json:"data"`
	}
	if err := json.Unmarshal(conn.writes[1], &sub); err != nil {
		t.Fatalf("decoding subscribe: %v", err)
	}
	if sub.Data.Auth != "" || sub.Data.Channel != "chatrooms.27670567.v2" {
		t.Fatalf("subscribe data = %+v", sub.Data)
	}
}

func TestHandshakeClosedBeforeSubscriptionAck(t *testing.T) {
	conn := &fakeConn{frames: []fakeFrame{
		pusherFrame(t, eventConnectionEstablished, "", `{}`),
	}}

	_, err := newSession(context.Background(), conn, 1, nil)
	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConnectError", err)
	}
	if ce.ChatroomID != 1 {
		t.Fatalf("ChatroomID = %d, want 1", ce.ChatroomID)
	}
}

func TestHandshakeTransportError(t *testing.T) {
	conn := &fakeConn{readErr: errors.New("connection reset")}

	_, err := newSession(context.Background(), conn, 1, nil)
	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConnectError", err)
	}
}

func TestNextEventFiltersReservedPrefixes(t *testing.T) {
	frames := handshakeFrames(t, 5)
	frames = append(frames,
		pusherFrame(t, "pusher_internal:member_added", "chatrooms.5.v2", `{}`),
		pusherFrame(t, "pusher:cache_miss", "chatrooms.5.v2", `{}`),
		pusherFrame(t, `App\Events\PinnedMessageCreatedEvent`, "chatrooms.5.v2", `{"pin":true}`),
	)
	conn := &fakeConn{frames: frames}

	s, err := newSession(context.Background(), conn, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	ev, err := s.NextEvent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ev.Event != `App\Events\PinnedMessageCreatedEvent` {
		t.Fatalf("event = %q, want pinned message event", ev.Event)
	}
	if ev.Channel != "chatrooms.5.v2" {
		t.Fatalf("channel = %q", ev.Channel)
	}
	if ev.Data != `{"pin":true}` {
		t.Fatalf("data = %q", ev.Data)
	}
}

func TestNextEventPingTransparency(t *testing.T) {
	frames := handshakeFrames(t, 5)
	frames = append(frames,
		pusherFrame(t, eventPing, "", `{}`),
		pusherFrame(t, `App\Events\UserBannedEvent`, "chatrooms.5.v2", `{"a":1}`),
		pusherFrame(t, eventPing, "", `{}`),
		pusherFrame(t, `App\Events\UserUnbannedEvent`, "chatrooms.5.v2", `{"b":2}`),
	)
	conn := &fakeConn{frames: frames}

	s, err := newSession(context.Background(), conn, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for {
		ev, err := s.NextEvent(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if ev == nil {
			break
		}
		got = append(got, ev.Event)
	}

	if len(got) != 2 || got[0] != `App\Events\UserBannedEvent` || got[1] != `App\Events\UserUnbannedEvent` {
		t.Fatalf("events = %v", got)
	}
	if n := countEvents(writtenEvents(t, conn), eventPong); n != 2 {
		t.Fatalf("pongs sent = %d, want 2", n)
	}
}

func TestNextEventSkipsMalformedFrames(t *testing.T) {
	frames := handshakeFrames(t, 5)
	frames = append(frames,
		fakeFrame{websocket.MessageBinary, []byte{0x01, 0x02}},
		fakeFrame{websocket.MessageText, []byte("not json")},
		fakeFrame{websocket.MessageText, []byte(`{"data":"no event name"}`)},
		pusherFrame(t, `App\Events\ChatMessageEvent`, "chatrooms.5.v2", `{}`),
	)
	conn := &fakeConn{frames: frames}

	s, err := newSession(context.Background(), conn, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	ev, err := s.NextEvent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ev == nil || ev.Event != EventChatMessage {
		t.Fatalf("event = %+v, want chat message event", ev)
	}
}

func TestEndOfStreamIsTerminal(t *testing.T) {
	conn := &fakeConn{frames: handshakeFrames(t, 5)}

	s, err := newSession(context.Background(), conn, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		ev, err := s.NextEvent(context.Background())
		if ev != nil || err != nil {
			t.Fatalf("call %d: ev=%v err=%v, want nil,nil", i, ev, err)
		}
	}
	msg, err := s.NextMessage(context.Background())
	if msg != nil || err != nil {
		t.Fatalf("NextMessage after close: msg=%v err=%v", msg, err)
	}
}

func TestNextMessageRoundTrip(t *testing.T) {
	const room = 27670567
	inner := `{"id":"1","chatroom_id":27670567,"content":"hi","type":"message",` +
		`"created_at":"2024-05-01T12:00:00Z","sender":{"id":5,"username":"bob","slug":"bob",` +
		`"identity":{"color":"#ffffff","badges":[{"type":"moderator","text":"Moderator"}]}}}`

	frames := handshakeFrames(t, room)
	frames = append(frames,
		pusherFrame(t, eventPing, "", `{}`),
		pusherFrame(t, EventChatMessage, fmt.Sprintf("chatrooms.%d.v2", room), inner),
		pusherFrame(t, "pusher_internal:member_added", "", `{}`),
	)
	conn := &fakeConn{frames: frames}

	s, err := newSession(context.Background(), conn, room, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	msg, err := s.NextMessage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if msg.Content != "hi" {
		t.Fatalf("content = %q, want %q", msg.Content, "hi")
	}
	if msg.Sender.ID != 5 || msg.Sender.Username != "bob" {
		t.Fatalf("sender = %+v", msg.Sender)
	}
	if msg.ChatroomID != room {
		t.Fatalf("chatroom_id = %d", msg.ChatroomID)
	}

	if n := countEvents(writtenEvents(t, conn), eventPong); n != 1 {
		t.Fatalf("pongs sent = %d, want 1", n)
	}

	msg, err = s.NextMessage(context.Background())
	if msg != nil || err != nil {
		t.Fatalf("second NextMessage: msg=%v err=%v, want nil,nil", msg, err)
	}
}

func TestNextMessageSkipsMalformedPayload(t *testing.T) {
	frames := handshakeFrames(t, 5)
	frames = append(frames,
		pusherFrame(t, EventChatMessage, "chatrooms.5.v2", `this is not json`),
		pusherFrame(t, EventChatMessage, "chatrooms.5.v2", `{"id":"2","content":"still here","type":"message","sender":{"id":9,"username":"eve","identity":{"color":"#000000","badges":[]}}}`),
	)
	conn := &fakeConn{frames: frames}

	s, err := newSession(context.Background(), conn, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	msg, err := s.NextMessage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID != "2" || msg.Content != "still here" {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestNextMessageSkipsNonChatEvents(t *testing.T) {
	frames := handshakeFrames(t, 5)
	frames = append(frames,
		pusherFrame(t, `App\Events\StreamerIsLive`, "chatrooms.5.v2", `{}`),
		pusherFrame(t, EventChatMessage, "chatrooms.5.v2", `{"id":"3","content":"yo","type":"message","sender":{"id":1,"username":"ann","identity":{"color":"#123456","badges":[]}}}`),
	)
	conn := &fakeConn{frames: frames}

	s, err := newSession(context.Background(), conn, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	msg, err := s.NextMessage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if msg.Content != "yo" {
		t.Fatalf("content = %q", msg.Content)
	}
}

func TestSendPing(t *testing.T) {
	conn := &fakeConn{frames: handshakeFrames(t, 5)}

	s, err := newSession(context.Background(), conn, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SendPing(context.Background()); err != nil {
		t.Fatal(err)
	}
	events := writtenEvents(t, conn)
	if events[len(events)-1] != eventPing {
		t.Fatalf("last write = %q, want %q", events[len(events)-1], eventPing)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	conn := &fakeConn{frames: handshakeFrames(t, 5)}

	s, err := newSession(context.Background(), conn, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if !conn.closed || conn.closeCode != websocket.StatusNormalClosure {
		t.Fatalf("conn closed=%v code=%v", conn.closed, conn.closeCode)
	}

	ev, err := s.NextEvent(context.Background())
	if ev != nil || err != nil {
		t.Fatalf("NextEvent after Close: ev=%v err=%v", ev, err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	conn := &fakeConn{
		frames:  handshakeFrames(t, 5),
		readErr: errors.New("broken pipe"),
	}

	s, err := newSession(context.Background(), conn, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.NextEvent(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
}

func TestGoingAwayIsEndOfStream(t *testing.T) {
	conn := &fakeConn{
		frames:  handshakeFrames(t, 5),
		readErr: websocket.CloseError{Code: websocket.StatusGoingAway},
	}

	s, err := newSession(context.Background(), conn, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	ev, err := s.NextEvent(context.Background())
	if ev != nil || err != nil {
		t.Fatalf("ev=%v err=%v, want nil,nil", ev, err)
	}
}
